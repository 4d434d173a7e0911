package repository

import (
	"context"
	"errors"
	"time"

	"skyvela-monitor/internal/domain/entity"
	"skyvela-monitor/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository implements the UserRepository interface
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM user repository
func NewGormUserRepository(db *gorm.DB) repository.UserRepository {
	return &GormUserRepository{
		db: db,
	}
}

// Users GORM model for database mapping
type Users struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"column:name;size:120"`
	Email     string `gorm:"column:email;size:255;unique"`
	CreatedAt time.Time
}

// TableName overrides the default table name
func (Users) TableName() string {
	return "users"
}

// GetByID finds a user by id
func (r *GormUserRepository) GetByID(ctx context.Context, id uint) (*entity.User, error) {
	var user Users
	result := r.db.WithContext(ctx).First(&user, id)

	if result.Error != nil {
		return nil, result.Error
	}

	return &entity.User{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}, nil
}

// GetByEmail finds a user by email
func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user Users
	result := r.db.WithContext(ctx).Where("email = ?", email).First(&user)

	if result.Error != nil {
		return nil, result.Error
	}

	return &entity.User{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}, nil
}

// GormPassportRepository implements the PassportRepository interface
type GormPassportRepository struct {
	db *gorm.DB
}

// NewGormPassportRepository creates a new GORM passport repository
func NewGormPassportRepository(db *gorm.DB) repository.PassportRepository {
	return &GormPassportRepository{
		db: db,
	}
}

// Passports GORM model for database mapping
type Passports struct {
	ID             uint   `gorm:"primaryKey"`
	UserID         uint   `gorm:"column:user_id;unique"`
	FirstName      string `gorm:"column:first_name;size:120"`
	LastName       string `gorm:"column:last_name;size:120"`
	PassportNumber string `gorm:"column:passport_number;size:64"`
	CreatedAt      time.Time
}

// TableName overrides the default table name
func (Passports) TableName() string {
	return "passports"
}

// GetByUserID finds the passport for a user. A user with no travel document
// on file yields (nil, nil), which is an expected outcome rather than an error.
func (r *GormPassportRepository) GetByUserID(ctx context.Context, userID uint) (*entity.Passport, error) {
	var passport Passports
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&passport)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return &entity.Passport{
		ID:             passport.ID,
		UserID:         passport.UserID,
		FirstName:      passport.FirstName,
		LastName:       passport.LastName,
		PassportNumber: passport.PassportNumber,
		CreatedAt:      passport.CreatedAt,
	}, nil
}

// Upsert creates or replaces the user's single passport record
func (r *GormPassportRepository) Upsert(ctx context.Context, passport *entity.Passport) error {
	model := &Passports{
		UserID:         passport.UserID,
		FirstName:      passport.FirstName,
		LastName:       passport.LastName,
		PassportNumber: passport.PassportNumber,
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"first_name", "last_name", "passport_number"}),
	}).Create(model)

	if result.Error != nil {
		return result.Error
	}
	passport.ID = model.ID
	return nil
}
