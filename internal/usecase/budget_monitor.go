package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skyvela-monitor/internal/domain/entity"
	"skyvela-monitor/internal/domain/repository"
	"skyvela-monitor/pkg/logger"
	"skyvela-monitor/pkg/metrics"
	"skyvela-monitor/pkg/utils"
	"skyvela-monitor/templates"

	"github.com/google/uuid"
)

// CheckResult is the structured outcome of evaluating one budget request,
// returned by the manual check endpoint in all cases
type CheckResult struct {
	RequestID     uint     `json:"requestId"`
	Status        string   `json:"status"`
	FoundPrice    *float64 `json:"foundPrice,omitempty"`
	Currency      string   `json:"currency,omitempty"`
	InBudget      bool     `json:"inBudget"`
	Booked        bool     `json:"booked"`
	AlertSent     bool     `json:"alertSent"`
	NeedsPassport bool     `json:"needsPassport"`
	Confirmation  string   `json:"confirmation,omitempty"`
	Message       string   `json:"message"`
}

// MonitorConfig holds the scheduling knobs of the monitoring loop
type MonitorConfig struct {
	CheckInterval time.Duration // sleep between cycles in continuous mode
	RequestDelay  time.Duration // rate-limiting delay between requests
	ErrorBackoff  time.Duration // sleep after a failed cycle
	SearchTimeout time.Duration // ceiling on one flight-offers call
	MaxOffers     int
}

func (c *MonitorConfig) applyDefaults() {
	if c.CheckInterval <= 0 {
		c.CheckInterval = time.Hour
	}
	if c.RequestDelay <= 0 {
		c.RequestDelay = 2 * time.Second
	}
	if c.ErrorBackoff <= 0 {
		c.ErrorBackoff = time.Minute
	}
	if c.SearchTimeout <= 0 {
		c.SearchTimeout = 30 * time.Second
	}
	if c.MaxOffers <= 0 {
		c.MaxOffers = 10
	}
}

// PriceMonitor drives the Budget Buy evaluation cycle: it loads active
// requests, re-queries prices, and dispatches alerts or auto-bookings.
// Requests are processed strictly sequentially; the monitor assumes it is the
// only instance running against the database.
type PriceMonitor struct {
	requestRepo    repository.BudgetRequestRepository
	userRepo       repository.UserRepository
	passportRepo   repository.PassportRepository
	flightSearch   repository.FlightSearchRepository
	mailer         repository.MailerRepository
	priceCheckRepo repository.PriceCheckRepository
	autoBooker     *AutoBooker
	metrics        *metrics.Metrics
	logger         logger.Logger
	config         MonitorConfig
}

// NewPriceMonitor creates a new price monitor
func NewPriceMonitor(
	requestRepo repository.BudgetRequestRepository,
	userRepo repository.UserRepository,
	passportRepo repository.PassportRepository,
	flightSearch repository.FlightSearchRepository,
	mailer repository.MailerRepository,
	priceCheckRepo repository.PriceCheckRepository,
	autoBooker *AutoBooker,
	m *metrics.Metrics,
	logger logger.Logger,
	config MonitorConfig,
) *PriceMonitor {
	config.applyDefaults()
	return &PriceMonitor{
		requestRepo:    requestRepo,
		userRepo:       userRepo,
		passportRepo:   passportRepo,
		flightSearch:   flightSearch,
		mailer:         mailer,
		priceCheckRepo: priceCheckRepo,
		autoBooker:     autoBooker,
		metrics:        m,
		logger:         logger,
		config:         config,
	}
}

// RunOnce executes a single monitoring cycle: every active request is
// evaluated in stable order with a rate-limiting delay in between. A failing
// request is logged and reset to pending; it never aborts the cycle. Errors
// loading the active set are cycle-level and propagate to the caller.
func (m *PriceMonitor) RunOnce(ctx context.Context) error {
	cycleID := uuid.NewString()
	started := time.Now()
	log := m.logger.With("cycleId", cycleID)

	requests, err := m.requestRepo.FindActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active requests: %w", err)
	}

	if len(requests) == 0 {
		log.Info("No active budget requests to process")
		return nil
	}

	log.Info("Starting monitoring cycle", "activeRequests", len(requests))

	for i, request := range requests {
		// Shutdown must never abort a request mid-transaction: the in-flight
		// request runs detached from the cancellable context and cancellation
		// is honored only between requests. Outbound calls stay bounded by
		// the per-call search timeout.
		reqCtx := context.WithoutCancel(ctx)
		if _, err := m.processRequest(reqCtx, request, cycleID); err != nil {
			log.Error("Failed to process request", "requestID", request.ID, "error", err)
			m.countError("process_request")
			m.resetToPending(reqCtx, request)
		}

		if i < len(requests)-1 {
			select {
			case <-ctx.Done():
				log.Info("Cycle interrupted", "processed", i+1, "total", len(requests))
				m.observeCycle(started)
				return ctx.Err()
			case <-time.After(m.config.RequestDelay):
			}
		}
	}

	m.observeCycle(started)
	log.Info("Monitoring cycle complete", "duration", time.Since(started).String())
	return nil
}

// Run executes monitoring cycles until the context is cancelled. A failed
// cycle triggers a short backoff instead of killing the process.
func (m *PriceMonitor) Run(ctx context.Context) {
	m.logger.Info("Starting continuous price monitoring",
		"checkInterval", m.config.CheckInterval.String())

	for {
		sleep := m.config.CheckInterval
		if err := m.RunOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				m.logger.Info("Price monitor stopped")
				return
			}
			m.logger.Error("Monitoring cycle failed", "error", err)
			m.countError("cycle")
			sleep = m.config.ErrorBackoff
		}

		select {
		case <-ctx.Done():
			m.logger.Info("Price monitor stopped")
			return
		case <-time.After(sleep):
		}
	}
}

// CheckNow runs the evaluate-and-maybe-book sequence for a single request,
// synchronously. Hard-terminal requests are rejected without re-evaluation so
// repeated invocations on a booked request never create a second booking.
func (m *PriceMonitor) CheckNow(ctx context.Context, requestID uint) (*CheckResult, error) {
	request, err := m.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load request %d: %w", requestID, err)
	}

	if request.IsTerminal() {
		return &CheckResult{
			RequestID:    request.ID,
			Status:       request.Status,
			Booked:       request.Status == entity.StatusBooked,
			Confirmation: deref(request.BookingConfirmation),
			Message:      fmt.Sprintf("request is already %s", request.Status),
		}, nil
	}

	result, err := m.processRequest(ctx, request, "manual-"+uuid.NewString())
	if err != nil {
		m.countError("check_now")
		m.resetToPending(ctx, request)
		return &CheckResult{
			RequestID: request.ID,
			Status:    entity.StatusPending,
			Message:   "check failed, request will be retried: " + err.Error(),
		}, nil
	}
	return result, nil
}

// processRequest runs the full state-machine pass for one request. The
// returned error means an unexpected failure; the caller resets the request
// to pending so it is retried next cycle rather than abandoned mid-state.
func (m *PriceMonitor) processRequest(ctx context.Context, request *entity.BudgetRequest, cycleID string) (*CheckResult, error) {
	log := m.logger.With("requestID", request.ID, "cycleId", cycleID)
	log.Info("Processing budget request",
		"route", request.Origin+"-"+request.Destination,
		"minBudget", request.MinBudget,
		"maxBudget", request.MaxBudget,
		"mode", request.Mode)

	m.countChecked()
	now := time.Now().UTC()
	result := &CheckResult{RequestID: request.ID}

	check := &entity.PriceCheck{
		RequestID:   request.ID,
		CycleID:     cycleID,
		Origin:      request.Origin,
		Destination: request.Destination,
		CheckedAt:   now,
	}
	defer m.recordCheck(ctx, check)

	request.Status = entity.StatusSearching
	request.LastCheckedAt = &now
	if err := m.requestRepo.Update(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to mark request searching: %w", err)
	}

	user, err := m.userRepo.GetByID(ctx, request.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", request.UserID, err)
	}

	offers := m.searchOffers(ctx, request, log)
	check.OfferCount = len(offers)

	if len(offers) == 0 {
		check.Outcome = entity.OutcomeNoOffers
		return m.stayPending(ctx, request, result, "no offers returned this cycle", log)
	}

	best, lowest, ok := utils.LowestPriceOffer(offers)
	if !ok {
		check.Outcome = entity.OutcomeNoPrice
		return m.stayPending(ctx, request, result, "no usable price in returned offers", log)
	}

	currency := best.Currency
	if currency == "" {
		currency = request.Currency
	}
	result.FoundPrice = &lowest
	result.Currency = currency
	check.LowestPrice = &lowest
	check.Currency = currency

	log.Info("Lowest price extracted", "price", lowest, "currency", currency)

	if !utils.WithinBudget(lowest, request.MinBudget, request.MaxBudget) {
		check.Outcome = entity.OutcomeOutOfBudget
		msg := fmt.Sprintf("price %.2f outside budget range %.2f-%.2f", lowest, request.MinBudget, request.MaxBudget)
		return m.stayPending(ctx, request, result, msg, log)
	}

	result.InBudget = true
	check.InBudget = true
	check.Outcome = entity.OutcomePriceFound

	// Persist the match before any notification or booking attempt
	request.Status = entity.StatusPriceFound
	if err := m.requestRepo.Update(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to mark price found: %w", err)
	}

	if request.Mode == entity.ModeAutoBook {
		return m.dispatchAutoBook(ctx, request, user, best, lowest, result, check, log)
	}
	return m.dispatchAlert(ctx, request, user, lowest, result, check, log)
}

// dispatchAlert sends the price-alert email and marks the request alert_sent.
// Delivery is best-effort: a send failure is logged and the transition stands.
func (m *PriceMonitor) dispatchAlert(ctx context.Context, request *entity.BudgetRequest, user *entity.User, price float64, result *CheckResult, check *entity.PriceCheck, log logger.Logger) (*CheckResult, error) {
	subject, html := templates.PriceAlert(request, price)
	if err := m.mailer.Send(ctx, user.Email, subject, html); err != nil {
		log.Error("Failed to send price alert", "error", err)
		m.countError("send_alert")
	}

	now := time.Now().UTC()
	request.Status = entity.StatusAlertSent
	request.CompletedAt = &now
	if err := m.requestRepo.Update(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to mark alert sent: %w", err)
	}

	m.countAlert()
	check.Outcome = entity.OutcomeAlertSent
	result.AlertSent = true
	result.Status = entity.StatusAlertSent
	result.Message = fmt.Sprintf("price %.2f within budget, alert sent", price)
	log.Info("Price alert dispatched", "email", user.Email, "price", price)
	return result, nil
}

// dispatchAutoBook runs the auto-booking executor. A missing passport is an
// expected outcome, not an error: the request stays price_found, the user
// gets the alert instead, and the caller sees a needs-passport flag.
func (m *PriceMonitor) dispatchAutoBook(ctx context.Context, request *entity.BudgetRequest, user *entity.User, offer *entity.FlightOffer, price float64, result *CheckResult, check *entity.PriceCheck, log logger.Logger) (*CheckResult, error) {
	passport, err := m.passportRepo.GetByUserID(ctx, request.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load passport: %w", err)
	}

	if passport == nil {
		log.Warn("No passport on file, downgrading to alert", "userID", request.UserID)
		reason := "passport required for auto-booking"
		request.LastError = &reason
		if err := m.requestRepo.Update(ctx, request); err != nil {
			return nil, fmt.Errorf("failed to record missing passport: %w", err)
		}

		subject, html := templates.PriceAlert(request, price)
		if err := m.mailer.Send(ctx, user.Email, subject, html); err != nil {
			log.Error("Failed to send price alert", "error", err)
			m.countError("send_alert")
		}

		result.NeedsPassport = true
		result.Status = entity.StatusPriceFound
		result.Message = "price within budget but auto-booking needs a passport on file"
		return result, nil
	}

	record, err := m.autoBooker.Book(ctx, request, passport, offer, price)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotBookable) {
			log.Warn("Request no longer bookable, skipping", "requestID", request.ID)
			check.Outcome = entity.OutcomeBookingFailed
			result.Status = request.Status
			result.Message = "request was cancelled or booked while processing"
			return result, nil
		}

		log.Error("Auto-booking failed", "error", err)
		m.countError("auto_book")
		check.Outcome = entity.OutcomeBookingFailed

		reason := err.Error()
		request.Status = entity.StatusPriceFound
		request.LastError = &reason
		if uerr := m.requestRepo.Update(ctx, request); uerr != nil {
			return nil, fmt.Errorf("failed to record booking failure: %w", uerr)
		}

		result.Status = entity.StatusPriceFound
		result.Message = "booking failed: " + reason
		return result, nil
	}

	// CreateForRequest committed the transition; mirror it in memory
	now := time.Now().UTC()
	request.Status = entity.StatusBooked
	request.BookedTicketID = &record.Ticket.ID
	request.BookedPrice = &price
	request.BookingConfirmation = &record.Booking.PNR
	request.CompletedAt = &now
	request.LastError = nil

	m.countBooking()
	check.Outcome = entity.OutcomeBooked
	result.Booked = true
	result.Status = entity.StatusBooked
	result.Confirmation = record.Booking.PNR
	result.Message = fmt.Sprintf("booked at %.2f, confirmation %s", price, record.Booking.PNR)

	subject, html := templates.BookingConfirmation(request, price, record.Booking.PNR)
	if err := m.mailer.Send(ctx, user.Email, subject, html); err != nil {
		log.Error("Failed to send booking confirmation", "error", err)
		m.countError("send_confirmation")
	}

	log.Info("Request auto-booked", "pnr", record.Booking.PNR, "price", price)
	return result, nil
}

// searchOffers queries the flight-offers API with a timeout. Provider errors
// are transient: logged and treated as "no offers this cycle".
func (m *PriceMonitor) searchOffers(ctx context.Context, request *entity.BudgetRequest, log logger.Logger) []*entity.FlightOffer {
	searchCtx, cancel := context.WithTimeout(ctx, m.config.SearchTimeout)
	defer cancel()

	query := repository.OfferQuery{
		Origin:      request.Origin,
		Destination: request.Destination,
		Adults:      1,
		MaxResults:  m.config.MaxOffers,
	}
	if request.DepartureDate != nil {
		query.DepartureDate = *request.DepartureDate
	}

	offers, err := m.flightSearch.Search(searchCtx, query)
	if err != nil {
		log.Error("Flight search failed", "error", err)
		m.countError("flight_search")
		return nil
	}
	return offers
}

// stayPending reverts the request to pending so the next cycle retries it
func (m *PriceMonitor) stayPending(ctx context.Context, request *entity.BudgetRequest, result *CheckResult, message string, log logger.Logger) (*CheckResult, error) {
	request.Status = entity.StatusPending
	if err := m.requestRepo.Update(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to revert request to pending: %w", err)
	}

	result.Status = entity.StatusPending
	result.Message = message
	log.Info("Request stays pending", "reason", message)
	return result, nil
}

// resetToPending is the safety net after an unexpected per-request failure
func (m *PriceMonitor) resetToPending(ctx context.Context, request *entity.BudgetRequest) {
	request.Status = entity.StatusPending
	if err := m.requestRepo.Update(ctx, request); err != nil {
		m.logger.Error("Failed to reset request to pending", "requestID", request.ID, "error", err)
	}
}

// recordCheck writes the audit document, best-effort
func (m *PriceMonitor) recordCheck(ctx context.Context, check *entity.PriceCheck) {
	if m.priceCheckRepo == nil || check.Outcome == "" {
		return
	}
	if err := m.priceCheckRepo.Save(ctx, check); err != nil {
		m.logger.Warn("Failed to record price check", "requestID", check.RequestID, "error", err)
	}
}

func (m *PriceMonitor) countChecked() {
	if m.metrics != nil {
		m.metrics.RequestsChecked.Inc()
	}
}

func (m *PriceMonitor) countBooking() {
	if m.metrics != nil {
		m.metrics.BookingsCompleted.Inc()
	}
}

func (m *PriceMonitor) countAlert() {
	if m.metrics != nil {
		m.metrics.AlertsSent.Inc()
	}
}

func (m *PriceMonitor) countError(operation string) {
	if m.metrics != nil {
		m.metrics.ErrorsCount.WithLabelValues(operation).Inc()
	}
}

func (m *PriceMonitor) observeCycle(started time.Time) {
	if m.metrics != nil {
		m.metrics.CycleDuration.Observe(time.Since(started).Seconds())
	}
}
