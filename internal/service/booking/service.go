// Package booking owns the booking lifecycle: Pending -> Paid -> Refunded,
// or Pending -> Canceled. It is the only component allowed to change a
// booking's status or total, and every status change persists in the same
// logical step or is rolled back.
package booking

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cinelab/cinetix/internal/clock"
	"github.com/cinelab/cinetix/internal/domain"
	"github.com/cinelab/cinetix/internal/repository"
	"github.com/cinelab/cinetix/internal/sequence"
	"github.com/cinelab/cinetix/internal/service/catalog"
	"github.com/cinelab/cinetix/internal/service/coupon"
	"github.com/cinelab/cinetix/internal/service/inventory"
	"github.com/cinelab/cinetix/internal/service/notify"
	"github.com/cinelab/cinetix/internal/service/payment"
)

type Config struct {
	Catalog   *catalog.Service
	Inventory *inventory.Service
	Coupons   *coupon.Service
	Gateway   payment.Gateway
	Notifier  *notify.Service

	Bookings *repository.BookingRepo
	Payments *repository.PaymentRepo

	BookingSeq *sequence.Sequence
	PaymentSeq *sequence.Sequence

	Clock  clock.Clock
	Logger *slog.Logger
}

type Service struct {
	cfg Config

	mu       sync.RWMutex
	bookings []*domain.Booking
}

func New(cfg Config) *Service {
	if cfg.Clock == nil {
		cfg.Clock = clock.System()
	}
	return &Service{cfg: cfg}
}

// Load rebuilds the in-memory ledger from persisted records, resolving
// customer, movie, screening, seat, coupon and payment references through
// the catalog. Records with dangling references are skipped with a warning;
// they still advance the id sequence so new bookings never collide.
func (s *Service) Load(ctx context.Context) error {
	const op = "booking.Service.Load"

	recs, err := s.cfg.Bookings.All(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.bookings = s.bookings[:0]
	for _, rec := range recs {
		s.cfg.BookingSeq.Observe(rec.BookingID)

		b, err := s.resolve(rec)
		if err != nil {
			s.cfg.Logger.Warn("skipping unresolvable booking record",
				"booking_id", rec.BookingID, "error", err)
			continue
		}
		s.bookings = append(s.bookings, b)
	}

	return nil
}

func (s *Service) resolve(rec repository.BookingRecord) (*domain.Booking, error) {
	customer := s.cfg.Catalog.FindCustomer(rec.CustomerUsername)
	if customer == nil {
		return nil, fmt.Errorf("unknown customer %q", rec.CustomerUsername)
	}

	movie := s.cfg.Catalog.FindMovie(rec.MovieID)
	if movie == nil {
		return nil, fmt.Errorf("unknown movie %d", rec.MovieID)
	}

	screening := s.cfg.Catalog.ScreeningByID(rec.ScreeningID)
	if screening == nil {
		return nil, fmt.Errorf("unknown screening %d", rec.ScreeningID)
	}

	seats := make([]*domain.Seat, 0, len(rec.SelectedSeats))
	for _, id := range rec.SelectedSeats {
		seat := screening.SeatByID(id)
		if seat == nil {
			return nil, fmt.Errorf("seat %s not on screening %d", id, rec.ScreeningID)
		}
		seats = append(seats, seat)
	}

	created, err := time.Parse("2006-01-02", rec.CreatedOn)
	if err != nil {
		return nil, fmt.Errorf("bad created_on %q: %w", rec.CreatedOn, err)
	}

	b := &domain.Booking{
		ID:        rec.BookingID,
		Customer:  customer,
		Movie:     movie,
		Screening: screening,
		NumSeats:  rec.NumOfSeats,
		Seats:     seats,
		CreatedOn: created,
		Total:     rec.TotalAmount,
		Status:    domain.Status(rec.Status),
	}

	if rec.PaymentID != nil {
		b.Payment = s.cfg.Catalog.FindPayment(*rec.PaymentID)
		if b.Payment == nil {
			return nil, fmt.Errorf("unknown payment %d", *rec.PaymentID)
		}
	}
	if rec.Coupon != "" {
		b.Coupon = s.cfg.Catalog.FindCoupon(rec.Coupon)
	}

	return b, nil
}

func (s *Service) Find(id int64) *domain.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.findLocked(id)
}

func (s *Service) findLocked(id int64) *domain.Booking {
	for _, b := range s.bookings {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// ForCustomer lists a customer's bookings, newest first.
func (s *Service) ForCustomer(username string) []*domain.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Booking
	for i := len(s.bookings) - 1; i >= 0; i-- {
		if s.bookings[i].Customer.Username == username {
			out = append(out, s.bookings[i])
		}
	}
	return out
}

func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.bookings)
}

// Create opens a Pending booking for the given seats. At most one Pending
// booking may exist per (customer, movie, screening); the total is the sum
// of the selected seat prices.
func (s *Service) Create(ctx context.Context, customer *domain.Account, movie *domain.Movie, screening *domain.Screening, seatIDs []string) (*domain.Booking, error) {
	const op = "booking.Service.Create"

	if len(seatIDs) == 0 {
		return nil, fmt.Errorf("%s: no seats selected", op)
	}

	seen := make(map[string]bool, len(seatIDs))
	for _, id := range seatIDs {
		if seen[id] {
			return nil, fmt.Errorf("%s: seat %s selected more than once", op, id)
		}
		seen[id] = true
	}

	// Lock order everywhere is ledger mutex first, then screening lock.
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock := s.cfg.Inventory.LockScreening(screening.ID)
	defer unlock()

	available, err := s.cfg.Inventory.IsAvailable(screening, seatIDs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !available {
		return nil, fmt.Errorf("%s: %w", op, ErrSeatConflict)
	}

	for _, existing := range s.bookings {
		if existing.Status == domain.StatusPending &&
			existing.Customer.Username == customer.Username &&
			existing.Movie.ID == movie.ID &&
			existing.Screening.ID == screening.ID {
			return nil, fmt.Errorf("%s: %w", op, ErrDuplicateBooking)
		}
	}

	seats := make([]*domain.Seat, 0, len(seatIDs))
	total := 0.0
	for _, id := range seatIDs {
		seat := screening.SeatByID(id)
		seats = append(seats, seat)
		total += seat.Price
	}

	b := &domain.Booking{
		ID:        s.cfg.BookingSeq.Next(),
		Customer:  customer,
		Movie:     movie,
		Screening: screening,
		NumSeats:  len(seats),
		Seats:     seats,
		CreatedOn: s.cfg.Clock.Now(),
		Total:     total,
		Status:    domain.StatusPending,
	}

	if err := s.cfg.Bookings.Append(ctx, b); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.bookings = append(s.bookings, b)
	s.cfg.Logger.Info("booking created",
		"booking_id", b.ID, "customer", customer.Username,
		"screening_id", screening.ID, "seats", seatIDs, "total", total)

	return b, nil
}

// ApplyCoupon discounts a pending booking's total exactly once.
func (s *Service) ApplyCoupon(ctx context.Context, bookingID int64, code string) (*domain.Booking, error) {
	const op = "booking.Service.ApplyCoupon"

	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.findLocked(bookingID)
	if b == nil {
		return nil, fmt.Errorf("%s: %d: %w", op, bookingID, ErrBookingNotFound)
	}

	if b.Status != domain.StatusPending {
		return nil, fmt.Errorf("%s: %w", op,
			IllegalTransitionError{BookingID: b.ID, From: b.Status, To: b.Status})
	}

	if b.Coupon != nil {
		return nil, fmt.Errorf("%s: %w", op, coupon.ErrAlreadyApplied)
	}

	c, err := s.cfg.Coupons.Validate(code)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	discounted := c.Apply(b.Total)

	if err := s.cfg.Bookings.SetTotalAndCoupon(ctx, b.ID, discounted, c.Code); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	b.Total = discounted
	b.Coupon = c
	s.cfg.Logger.Info("coupon applied",
		"booking_id", b.ID, "coupon", c.Code, "total", b.Total)

	return b, nil
}

// Pay drives Pending -> Paid. Availability is re-checked under the
// screening lock right before authorization because another booking may
// have taken the seats since this one was created. Payment record, seat
// reservation and booking status either all persist or are unwound.
func (s *Service) Pay(ctx context.Context, bookingID int64, card domain.Card) (*domain.Booking, error) {
	const op = "booking.Service.Pay"

	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.findLocked(bookingID)
	if b == nil {
		return nil, fmt.Errorf("%s: %d: %w", op, bookingID, ErrBookingNotFound)
	}

	if b.Status != domain.StatusPending {
		return nil, fmt.Errorf("%s: %w", op,
			IllegalTransitionError{BookingID: b.ID, From: b.Status, To: domain.StatusPaid})
	}

	unlock := s.cfg.Inventory.LockScreening(b.Screening.ID)
	defer unlock()

	available, err := s.cfg.Inventory.IsAvailable(b.Screening, b.SeatIDs())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !available {
		return nil, fmt.Errorf("%s: %w", op, ErrSeatConflict)
	}

	auth, err := s.cfg.Gateway.Authorize(ctx, b.Total, card)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p := &domain.Payment{
		ID:         s.cfg.PaymentSeq.Next(),
		Amount:     b.Total,
		Coupon:     b.Coupon,
		CreatedOn:  s.cfg.Clock.Now(),
		CardNumber: payment.Mask(card.Number),
		CardType:   auth.CardType,
		ExpiryDate: card.Expiry,
		NameOnCard: card.Holder,
	}

	if err := s.cfg.Payments.Append(ctx, p); err != nil {
		s.reverseCharge(ctx, p)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cfg.Inventory.Reserve(ctx, b.Screening, b.SeatIDs()); err != nil {
		s.unwindPayment(ctx, p)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cfg.Bookings.SetPayment(ctx, b.ID, p.ID, domain.StatusPaid); err != nil {
		if relErr := s.cfg.Inventory.Release(ctx, b.Screening, b.SeatIDs()); relErr != nil {
			s.cfg.Logger.Error("failed to release seats while unwinding payment",
				"booking_id", b.ID, "error", relErr)
		}
		s.unwindPayment(ctx, p)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	b.Payment = p
	b.Status = domain.StatusPaid
	s.cfg.Catalog.AddPayment(p)

	s.cfg.Notifier.BookingConfirmed(ctx, b)
	s.cfg.Logger.Info("booking paid",
		"booking_id", b.ID, "payment_id", p.ID, "auth_ref", auth.Reference, "amount", p.Amount)

	return b, nil
}

// Cancel drives Pending -> Canceled. A paid booking cannot be canceled; the
// money and the seats can only come back through Refund.
func (s *Service) Cancel(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	const op = "booking.Service.Cancel"

	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.findLocked(bookingID)
	if b == nil {
		return nil, fmt.Errorf("%s: %d: %w", op, bookingID, ErrBookingNotFound)
	}

	if b.Status != domain.StatusPending {
		return nil, fmt.Errorf("%s: %w", op,
			IllegalTransitionError{BookingID: b.ID, From: b.Status, To: domain.StatusCanceled})
	}

	if err := s.cfg.Bookings.SetStatus(ctx, b.ID, domain.StatusCanceled); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	b.Status = domain.StatusCanceled
	s.cfg.Notifier.BookingCanceled(ctx, b)
	s.cfg.Logger.Info("booking canceled", "booking_id", b.ID)

	return b, nil
}

// Refund drives Paid -> Refunded: reverse the charge, release the seats,
// persist the new status.
func (s *Service) Refund(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	const op = "booking.Service.Refund"

	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.findLocked(bookingID)
	if b == nil {
		return nil, fmt.Errorf("%s: %d: %w", op, bookingID, ErrBookingNotFound)
	}

	if b.Status != domain.StatusPaid {
		return nil, fmt.Errorf("%s: %w", op,
			IllegalTransitionError{BookingID: b.ID, From: b.Status, To: domain.StatusRefunded})
	}

	unlock := s.cfg.Inventory.LockScreening(b.Screening.ID)
	defer unlock()

	ref, err := s.cfg.Gateway.Refund(ctx, b.Payment)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cfg.Inventory.Release(ctx, b.Screening, b.SeatIDs()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cfg.Bookings.SetStatus(ctx, b.ID, domain.StatusRefunded); err != nil {
		if resErr := s.cfg.Inventory.Reserve(ctx, b.Screening, b.SeatIDs()); resErr != nil {
			s.cfg.Logger.Error("failed to re-reserve seats while unwinding refund",
				"booking_id", b.ID, "error", resErr)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	b.Status = domain.StatusRefunded
	s.cfg.Notifier.BookingRefunded(ctx, b)
	s.cfg.Logger.Info("booking refunded",
		"booking_id", b.ID, "payment_id", b.Payment.ID, "refund_ref", ref)

	return b, nil
}

// reverseCharge asks the gateway to undo an authorization whose payment
// record never made it to disk.
func (s *Service) reverseCharge(ctx context.Context, p *domain.Payment) {
	if _, err := s.cfg.Gateway.Refund(ctx, p); err != nil {
		s.cfg.Logger.Error("failed to reverse charge after persistence failure",
			"payment_id", p.ID, "error", err)
	}
}

// unwindPayment removes a persisted payment record and reverses its charge.
func (s *Service) unwindPayment(ctx context.Context, p *domain.Payment) {
	if err := s.cfg.Payments.Remove(ctx, p.ID); err != nil {
		s.cfg.Logger.Error("failed to remove payment record while unwinding",
			"payment_id", p.ID, "error", err)
	}
	s.reverseCharge(ctx, p)
}
