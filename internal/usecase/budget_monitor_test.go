package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"skyvela-monitor/internal/domain/entity"
	"skyvela-monitor/internal/domain/repository"
	"skyvela-monitor/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRequestRepo struct {
	requests    map[uint]*entity.BudgetRequest
	activeErr   error
	updateCalls int
}

func newFakeRequestRepo(requests ...*entity.BudgetRequest) *fakeRequestRepo {
	repo := &fakeRequestRepo{requests: map[uint]*entity.BudgetRequest{}}
	for _, r := range requests {
		repo.requests[r.ID] = r
	}
	return repo
}

func (f *fakeRequestRepo) Create(ctx context.Context, request *entity.BudgetRequest) error {
	f.requests[request.ID] = request
	return nil
}

func (f *fakeRequestRepo) FindByID(ctx context.Context, id uint) (*entity.BudgetRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return nil, repository.ErrRequestNotFound
	}
	return r, nil
}

func (f *fakeRequestRepo) FindActive(ctx context.Context) ([]*entity.BudgetRequest, error) {
	if f.activeErr != nil {
		return nil, f.activeErr
	}
	var out []*entity.BudgetRequest
	for id := uint(0); id < 1000; id++ {
		if r, ok := f.requests[id]; ok && r.IsActive() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) Update(ctx context.Context, request *entity.BudgetRequest) error {
	f.updateCalls++
	f.requests[request.ID] = request
	return nil
}

type fakeUserRepo struct {
	users map[uint]*entity.User
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uint) (*entity.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errors.New("user not found")
}

type fakePassportRepo struct {
	passports map[uint]*entity.Passport
}

func (f *fakePassportRepo) GetByUserID(ctx context.Context, userID uint) (*entity.Passport, error) {
	return f.passports[userID], nil
}

func (f *fakePassportRepo) Upsert(ctx context.Context, passport *entity.Passport) error {
	f.passports[passport.UserID] = passport
	return nil
}

type fakeFlightSearch struct {
	offers  []*entity.FlightOffer
	err     error
	queries []repository.OfferQuery
}

func (f *fakeFlightSearch) Search(ctx context.Context, query repository.OfferQuery) ([]*entity.FlightOffer, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.offers, nil
}

type sentMail struct {
	to      string
	subject string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	f.sent = append(f.sent, sentMail{to: to, subject: subject})
	return f.err
}

type fakePriceCheckRepo struct {
	saved []*entity.PriceCheck
}

func (f *fakePriceCheckRepo) Save(ctx context.Context, check *entity.PriceCheck) error {
	f.saved = append(f.saved, check)
	return nil
}

func (f *fakePriceCheckRepo) FindByRequestID(ctx context.Context, requestID uint, limit int) ([]*entity.PriceCheck, error) {
	var out []*entity.PriceCheck
	for _, c := range f.saved {
		if c.RequestID == requestID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeBookingRepo struct {
	conflicts int // return ErrPNRConflict this many times before succeeding
	err       error
	created   []*entity.BookingRecord
	pnrs      []string
}

func (f *fakeBookingRepo) CreateForRequest(ctx context.Context, requestID uint, record *entity.BookingRecord) (*entity.BookingRecord, error) {
	f.pnrs = append(f.pnrs, record.Booking.PNR)
	if f.conflicts > 0 {
		f.conflicts--
		return nil, repository.ErrPNRConflict
	}
	if f.err != nil {
		return nil, f.err
	}
	record.Flight.ID = 11
	record.Ticket.ID = 22
	record.Ticket.FlightID = 11
	record.Payment.ID = 33
	record.Booking.ID = 44
	record.Booking.PaymentID = 33
	f.created = append(f.created, record)
	return record, nil
}

func (f *fakeBookingRepo) CountByUser(ctx context.Context, userID uint) (int64, error) {
	return int64(len(f.created)), nil
}

type monitorFixture struct {
	monitor   *PriceMonitor
	requests  *fakeRequestRepo
	search    *fakeFlightSearch
	mailer    *fakeMailer
	checks    *fakePriceCheckRepo
	bookings  *fakeBookingRepo
	passports *fakePassportRepo
}

func newMonitorFixture(requests ...*entity.BudgetRequest) *monitorFixture {
	log := logger.NewNopLogger()
	f := &monitorFixture{
		requests:  newFakeRequestRepo(requests...),
		search:    &fakeFlightSearch{},
		mailer:    &fakeMailer{},
		checks:    &fakePriceCheckRepo{},
		bookings:  &fakeBookingRepo{},
		passports: &fakePassportRepo{passports: map[uint]*entity.Passport{}},
	}
	users := &fakeUserRepo{users: map[uint]*entity.User{
		7: {ID: 7, Name: "Ada", Email: "ada@example.com"},
	}}
	f.monitor = NewPriceMonitor(
		f.requests,
		users,
		f.passports,
		f.search,
		f.mailer,
		f.checks,
		NewAutoBooker(f.bookings, log),
		nil,
		log,
		MonitorConfig{RequestDelay: time.Millisecond, SearchTimeout: time.Second},
	)
	return f
}

func autoBookRequest(id uint) *entity.BudgetRequest {
	departure := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	return &entity.BudgetRequest{
		ID:            id,
		UserID:        7,
		Origin:        "JFK",
		Destination:   "LAX",
		DepartureDate: &departure,
		MinBudget:     100,
		MaxBudget:     500,
		Currency:      "USD",
		Mode:          entity.ModeAutoBook,
		Status:        entity.StatusPending,
	}
}

func pricedOffer(id string, price float64) *entity.FlightOffer {
	dep := time.Date(2026, 10, 1, 8, 30, 0, 0, time.UTC)
	arr := dep.Add(6 * time.Hour)
	return &entity.FlightOffer{
		OfferID:    id,
		TotalPrice: &price,
		Currency:   "USD",
		Cabin:      "ECONOMY",
		Segments: []entity.OfferSegment{{
			CarrierCode: "AA",
			Number:      "100",
			Origin:      "JFK",
			Destination: "LAX",
			DepartureAt: &dep,
			ArrivalAt:   &arr,
		}},
	}
}

func TestRunOnce_AutoBooksInBudgetPrice(t *testing.T) {
	request := autoBookRequest(1)
	f := newMonitorFixture(request)
	f.passports.passports[7] = &entity.Passport{UserID: 7, FirstName: "Ada", LastName: "Lovelace", PassportNumber: "X123"}
	f.search.offers = []*entity.FlightOffer{
		pricedOffer("expensive", 470),
		pricedOffer("cheap", 320.50),
	}

	require.NoError(t, f.monitor.RunOnce(context.Background()))

	assert.Equal(t, entity.StatusBooked, request.Status)
	require.NotNil(t, request.BookedPrice)
	assert.Equal(t, 320.50, *request.BookedPrice)
	require.NotNil(t, request.BookingConfirmation)
	assert.Regexp(t, `^[A-Z0-9]{6}$`, *request.BookingConfirmation)
	assert.NotNil(t, request.CompletedAt)
	assert.Nil(t, request.LastError)

	require.Len(t, f.bookings.created, 1)
	booking := f.bookings.created[0].Booking
	assert.Equal(t, 320.50, booking.TotalAmount)
	assert.Equal(t, entity.BookingStatusConfirmed, booking.Status)

	// booking confirmation email to the owner
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "ada@example.com", f.mailer.sent[0].to)
	assert.Contains(t, f.mailer.sent[0].subject, "Booking")

	require.Len(t, f.checks.saved, 1)
	assert.Equal(t, entity.OutcomeBooked, f.checks.saved[0].Outcome)
	assert.True(t, f.checks.saved[0].InBudget)
}

func TestRunOnce_AlertOnlySendsAndCompletes(t *testing.T) {
	request := autoBookRequest(1)
	request.Mode = entity.ModeAlertOnly
	f := newMonitorFixture(request)
	f.search.offers = []*entity.FlightOffer{pricedOffer("cheap", 250)}

	require.NoError(t, f.monitor.RunOnce(context.Background()))

	assert.Equal(t, entity.StatusAlertSent, request.Status)
	assert.NotNil(t, request.CompletedAt)
	assert.Empty(t, f.bookings.created)

	require.Len(t, f.mailer.sent, 1)
	assert.Contains(t, f.mailer.sent[0].subject, "Price Alert")

	require.Len(t, f.checks.saved, 1)
	assert.Equal(t, entity.OutcomeAlertSent, f.checks.saved[0].Outcome)
}

func TestRunOnce_AlertSendFailureStillCompletes(t *testing.T) {
	request := autoBookRequest(1)
	request.Mode = entity.ModeAlertOnly
	f := newMonitorFixture(request)
	f.search.offers = []*entity.FlightOffer{pricedOffer("cheap", 250)}
	f.mailer.err = errors.New("smtp down")

	require.NoError(t, f.monitor.RunOnce(context.Background()))

	assert.Equal(t, entity.StatusAlertSent, request.Status)
}

func TestRunOnce_MissingPassportDowngradesToAlert(t *testing.T) {
	request := autoBookRequest(1)
	f := newMonitorFixture(request)
	f.search.offers = []*entity.FlightOffer{pricedOffer("cheap", 250)}
	// no passport on file for user 7

	require.NoError(t, f.monitor.RunOnce(context.Background()))

	assert.Equal(t, entity.StatusPriceFound, request.Status)
	require.NotNil(t, request.LastError)
	assert.Contains(t, *request.LastError, "passport")
	assert.Empty(t, f.bookings.created)

	// the user still gets a price alert
	require.Len(t, f.mailer.sent, 1)
	assert.Contains(t, f.mailer.sent[0].subject, "Price Alert")
}

func TestRunOnce_OutOfBudgetStaysPending(t *testing.T) {
	request := autoBookRequest(1)
	f := newMonitorFixture(request)
	f.search.offers = []*entity.FlightOffer{pricedOffer("pricey", 650)}

	require.NoError(t, f.monitor.RunOnce(context.Background()))

	assert.Equal(t, entity.StatusPending, request.Status)
	assert.NotNil(t, request.LastCheckedAt)
	assert.Empty(t, f.mailer.sent)
	assert.Empty(t, f.bookings.created)

	require.Len(t, f.checks.saved, 1)
	assert.Equal(t, entity.OutcomeOutOfBudget, f.checks.saved[0].Outcome)
	require.NotNil(t, f.checks.saved[0].LowestPrice)
	assert.Equal(t, 650.0, *f.checks.saved[0].LowestPrice)
}

func TestRunOnce_BudgetBoundsAreInclusive(t *testing.T) {
	for _, price := range []float64{100, 500} {
		request := autoBookRequest(1)
		request.Mode = entity.ModeAlertOnly
		f := newMonitorFixture(request)
		f.search.offers = []*entity.FlightOffer{pricedOffer("edge", price)}

		require.NoError(t, f.monitor.RunOnce(context.Background()))
		assert.Equal(t, entity.StatusAlertSent, request.Status, "price %.2f", price)
	}
}

func TestRunOnce_NoOffersStaysPending(t *testing.T) {
	request := autoBookRequest(1)
	f := newMonitorFixture(request)

	require.NoError(t, f.monitor.RunOnce(context.Background()))

	assert.Equal(t, entity.StatusPending, request.Status)
	require.Len(t, f.checks.saved, 1)
	assert.Equal(t, entity.OutcomeNoOffers, f.checks.saved[0].Outcome)
}

func TestRunOnce_SearchErrorIsTransient(t *testing.T) {
	request := autoBookRequest(1)
	f := newMonitorFixture(request)
	f.search.err = errors.New("provider 500")

	require.NoError(t, f.monitor.RunOnce(context.Background()))

	assert.Equal(t, entity.StatusPending, request.Status)
}

func TestRunOnce_GarbagePricesStayPending(t *testing.T) {
	request := autoBookRequest(1)
	f := newMonitorFixture(request)
	f.search.offers = []*entity.FlightOffer{
		{OfferID: "a", TotalPrice: nil},
		{OfferID: "b", TotalPrice: nil},
	}

	require.NoError(t, f.monitor.RunOnce(context.Background()))

	assert.Equal(t, entity.StatusPending, request.Status)
	require.Len(t, f.checks.saved, 1)
	assert.Equal(t, entity.OutcomeNoPrice, f.checks.saved[0].Outcome)
}

func TestRunOnce_BookingFailureKeepsPriceFound(t *testing.T) {
	request := autoBookRequest(1)
	f := newMonitorFixture(request)
	f.passports.passports[7] = &entity.Passport{UserID: 7, FirstName: "Ada", LastName: "Lovelace", PassportNumber: "X123"}
	f.search.offers = []*entity.FlightOffer{pricedOffer("cheap", 250)}
	f.bookings.err = errors.New("deadlock detected")

	require.NoError(t, f.monitor.RunOnce(context.Background()))

	assert.Equal(t, entity.StatusPriceFound, request.Status)
	require.NotNil(t, request.LastError)
	assert.Contains(t, *request.LastError, "deadlock")

	require.Len(t, f.checks.saved, 1)
	assert.Equal(t, entity.OutcomeBookingFailed, f.checks.saved[0].Outcome)
}

func TestRunOnce_ProcessesRequestsInIDOrder(t *testing.T) {
	first := autoBookRequest(1)
	second := autoBookRequest(2)
	second.Origin = "BOS"
	f := newMonitorFixture(first, second)

	require.NoError(t, f.monitor.RunOnce(context.Background()))

	require.Len(t, f.search.queries, 2)
	assert.Equal(t, "JFK", f.search.queries[0].Origin)
	assert.Equal(t, "BOS", f.search.queries[1].Origin)
}

func TestRunOnce_FailingRequestDoesNotAbortCycle(t *testing.T) {
	orphan := autoBookRequest(1)
	orphan.UserID = 999 // no such user
	healthy := autoBookRequest(2)
	healthy.Origin = "SFO"
	f := newMonitorFixture(orphan, healthy)

	require.NoError(t, f.monitor.RunOnce(context.Background()))

	// the broken request is reset for retry, the healthy one still ran
	assert.Equal(t, entity.StatusPending, orphan.Status)
	require.Len(t, f.search.queries, 1)
	assert.Equal(t, "SFO", f.search.queries[0].Origin)
}

func TestRunOnce_SkipsTerminalAndDormantRequests(t *testing.T) {
	booked := autoBookRequest(1)
	booked.Status = entity.StatusBooked
	cancelled := autoBookRequest(2)
	cancelled.Status = entity.StatusCancelled
	alerted := autoBookRequest(3)
	alerted.Status = entity.StatusAlertSent
	f := newMonitorFixture(booked, cancelled, alerted)

	require.NoError(t, f.monitor.RunOnce(context.Background()))

	assert.Empty(t, f.search.queries)
	assert.Equal(t, entity.StatusBooked, booked.Status)
	assert.Equal(t, entity.StatusCancelled, cancelled.Status)
}

// ctxCheckingRequestRepo fails persistence once the given context is
// cancelled, the way the real database layer would during shutdown
type ctxCheckingRequestRepo struct {
	*fakeRequestRepo
}

func (r *ctxCheckingRequestRepo) Update(ctx context.Context, request *entity.BudgetRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.fakeRequestRepo.Update(ctx, request)
}

// cancellingFlightSearch cancels the monitor's context while a search is in
// flight, simulating a shutdown signal arriving during the external call
type cancellingFlightSearch struct {
	offers []*entity.FlightOffer
	cancel context.CancelFunc
	calls  int
}

func (s *cancellingFlightSearch) Search(ctx context.Context, query repository.OfferQuery) ([]*entity.FlightOffer, error) {
	s.calls++
	s.cancel()
	return s.offers, nil
}

func TestRunOnce_ShutdownLetsInFlightRequestFinish(t *testing.T) {
	first := autoBookRequest(1)
	first.Mode = entity.ModeAlertOnly
	second := autoBookRequest(2)
	second.Mode = entity.ModeAlertOnly

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := logger.NewNopLogger()
	requests := &ctxCheckingRequestRepo{newFakeRequestRepo(first, second)}
	search := &cancellingFlightSearch{
		offers: []*entity.FlightOffer{pricedOffer("cheap", 250)},
		cancel: cancel,
	}
	mail := &fakeMailer{}
	users := &fakeUserRepo{users: map[uint]*entity.User{
		7: {ID: 7, Name: "Ada", Email: "ada@example.com"},
	}}
	monitor := NewPriceMonitor(
		requests,
		users,
		&fakePassportRepo{passports: map[uint]*entity.Passport{}},
		search,
		mail,
		&fakePriceCheckRepo{},
		NewAutoBooker(&fakeBookingRepo{}, log),
		nil,
		log,
		MonitorConfig{RequestDelay: time.Millisecond, SearchTimeout: time.Second},
	)

	err := monitor.RunOnce(ctx)
	require.ErrorIs(t, err, context.Canceled)

	// the request in flight when cancellation arrived still ran to completion
	assert.Equal(t, entity.StatusAlertSent, first.Status)
	assert.NotNil(t, first.CompletedAt)
	require.Len(t, mail.sent, 1)

	// the next request was never started
	assert.Equal(t, entity.StatusPending, second.Status)
	assert.Equal(t, 1, search.calls)
}

func TestRunOnce_ActiveLookupErrorPropagates(t *testing.T) {
	f := newMonitorFixture()
	f.requests.activeErr = errors.New("db gone")

	err := f.monitor.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db gone")
}

func TestCheckNow_RejectsTerminalRequests(t *testing.T) {
	pnr := "ABC123"
	booked := autoBookRequest(1)
	booked.Status = entity.StatusBooked
	booked.BookingConfirmation = &pnr
	f := newMonitorFixture(booked)

	result, err := f.monitor.CheckNow(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, result.Booked)
	assert.Equal(t, "ABC123", result.Confirmation)
	assert.Contains(t, result.Message, "already booked")
	assert.Empty(t, f.search.queries, "terminal requests are never re-evaluated")
	assert.Empty(t, f.bookings.created)
}

func TestCheckNow_ReArmsDormantRequest(t *testing.T) {
	alerted := autoBookRequest(1)
	alerted.Mode = entity.ModeAlertOnly
	alerted.Status = entity.StatusAlertSent
	f := newMonitorFixture(alerted)
	f.search.offers = []*entity.FlightOffer{pricedOffer("cheap", 250)}

	result, err := f.monitor.CheckNow(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, result.AlertSent)
	require.NotNil(t, result.FoundPrice)
	assert.Equal(t, 250.0, *result.FoundPrice)
}

func TestCheckNow_UnknownRequest(t *testing.T) {
	f := newMonitorFixture()

	_, err := f.monitor.CheckNow(context.Background(), 99)
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrRequestNotFound)
}

func TestCheckNow_FlagsMissingPassport(t *testing.T) {
	request := autoBookRequest(1)
	f := newMonitorFixture(request)
	f.search.offers = []*entity.FlightOffer{pricedOffer("cheap", 250)}

	result, err := f.monitor.CheckNow(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, result.NeedsPassport)
	assert.True(t, result.InBudget)
	assert.False(t, result.Booked)
	assert.Equal(t, entity.StatusPriceFound, result.Status)
	assert.Empty(t, f.bookings.created)
}

func TestCheckNow_ReportsOutOfBudget(t *testing.T) {
	request := autoBookRequest(1)
	f := newMonitorFixture(request)
	f.search.offers = []*entity.FlightOffer{pricedOffer("pricey", 900)}

	result, err := f.monitor.CheckNow(context.Background(), 1)
	require.NoError(t, err)

	assert.False(t, result.InBudget)
	assert.False(t, result.Booked)
	require.NotNil(t, result.FoundPrice)
	assert.Equal(t, 900.0, *result.FoundPrice)
	assert.Equal(t, entity.StatusPending, result.Status)
}
