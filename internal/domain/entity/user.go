package entity

import "time"

// User is the owner of budget requests. The monitor only reads users.
type User struct {
	ID        uint
	Name      string
	Email     string
	CreatedAt time.Time
}

// Passport holds user-supplied travel-document data required before
// auto-booking may proceed. Zero or one per user (create-or-update).
type Passport struct {
	ID             uint
	UserID         uint
	FirstName      string
	LastName       string
	PassportNumber string
	CreatedAt      time.Time
}

// FullName returns the passenger name as it appears on the document
func (p *Passport) FullName() string {
	return p.FirstName + " " + p.LastName
}
