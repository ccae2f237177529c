// Package cinema is the application surface: it resolves identifiers to
// domain objects and dispatches to the services that own the behavior.
// Callers (a CLI, a future transport layer, tests) talk to the Controller
// and never to a service directly.
package cinema

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cinelab/cinetix/internal/domain"
	"github.com/cinelab/cinetix/internal/service"
	"github.com/cinelab/cinetix/internal/service/catalog"
)

type Controller struct {
	services *service.Services
	logger   *slog.Logger
}

func New(services *service.Services, logger *slog.Logger) *Controller {
	return &Controller{services: services, logger: logger}
}

// Load warms every service from disk. The catalog must come first: the
// ledger and the notifier resolve references through it.
func (c *Controller) Load(ctx context.Context) error {
	const op = "cinema.Controller.Load"

	if err := c.services.Catalog.Load(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.services.Notifier.Load(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.services.Ledger.Load(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	counts := c.services.Catalog.Counts()
	c.logger.Info("database loaded",
		"accounts", counts["accounts"],
		"halls", counts["halls"],
		"movies", counts["movies"],
		"screenings", counts["screenings"],
		"coupons", counts["coupons"],
		"payments", counts["payments"],
		"bookings", c.services.Ledger.Count())

	return nil
}

// ----- lookups -----

func (c *Controller) FindMovie(id int64) *domain.Movie {
	return c.services.Catalog.FindMovie(id)
}

func (c *Controller) FindScreening(movieID int64, date, startTime string) *domain.Screening {
	return c.services.Catalog.FindScreening(movieID, date, startTime)
}

func (c *Controller) FindCustomer(username string) *domain.Account {
	return c.services.Catalog.FindCustomer(username)
}

func (c *Controller) FindCoupon(code string) *domain.Coupon {
	return c.services.Catalog.FindCoupon(code)
}

func (c *Controller) FindPayment(id int64) *domain.Payment {
	return c.services.Catalog.FindPayment(id)
}

func (c *Controller) FindBooking(id int64) *domain.Booking {
	return c.services.Ledger.Find(id)
}

// ----- browsing -----

func (c *Controller) Movies() []*domain.Movie {
	return c.services.Catalog.Movies()
}

func (c *Controller) FilterMovies(f catalog.Filter) []*domain.Movie {
	return c.services.Catalog.FilterMovies(f)
}

func (c *Controller) Languages() []string { return c.services.Catalog.Languages() }

func (c *Controller) Genres() []string { return c.services.Catalog.Genres() }

func (c *Controller) ScreeningDates(movieID int64) []string {
	return c.services.Catalog.ScreeningDates(movieID)
}

func (c *Controller) ScreeningsByMovie(movieID int64) []*domain.Screening {
	return c.services.Catalog.ScreeningsByMovie(movieID)
}

func (c *Controller) BookingsFor(username string) []*domain.Booking {
	return c.services.Ledger.ForCustomer(username)
}

// CheckSeatAvailability reports whether every requested seat on the
// screening is still free.
func (c *Controller) CheckSeatAvailability(screeningID int64, seatIDs []string) (bool, error) {
	const op = "cinema.Controller.CheckSeatAvailability"

	screening := c.services.Catalog.ScreeningByID(screeningID)
	if screening == nil {
		return false, fmt.Errorf("%s: %d: %w", op, screeningID, catalog.ErrScreeningNotFound)
	}

	unlock := c.services.Inventory.LockScreening(screeningID)
	defer unlock()

	ok, err := c.services.Inventory.IsAvailable(screening, seatIDs)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}

// ----- booking lifecycle -----

// CreateBooking resolves the customer, movie and screening and opens a
// Pending booking for the selected seats.
func (c *Controller) CreateBooking(ctx context.Context, username string, movieID, screeningID int64, seatIDs []string) (*domain.Booking, error) {
	const op = "cinema.Controller.CreateBooking"

	customer := c.services.Catalog.FindCustomer(username)
	if customer == nil {
		return nil, fmt.Errorf("%s: %q: %w", op, username, catalog.ErrCustomerNotFound)
	}

	movie := c.services.Catalog.FindMovie(movieID)
	if movie == nil {
		return nil, fmt.Errorf("%s: %d: %w", op, movieID, catalog.ErrMovieNotFound)
	}

	screening := c.services.Catalog.ScreeningByID(screeningID)
	if screening == nil || screening.MovieID != movieID {
		return nil, fmt.Errorf("%s: %d: %w", op, screeningID, catalog.ErrScreeningNotFound)
	}

	b, err := c.services.Ledger.Create(ctx, customer, movie, screening, seatIDs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return b, nil
}

func (c *Controller) ApplyCoupon(ctx context.Context, bookingID int64, code string) (*domain.Booking, error) {
	return c.services.Ledger.ApplyCoupon(ctx, bookingID, code)
}

func (c *Controller) Pay(ctx context.Context, bookingID int64, card domain.Card) (*domain.Booking, error) {
	return c.services.Ledger.Pay(ctx, bookingID, card)
}

func (c *Controller) CancelBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	return c.services.Ledger.Cancel(ctx, bookingID)
}

func (c *Controller) RefundBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	return c.services.Ledger.Refund(ctx, bookingID)
}

// ----- accounts and administration -----

func (c *Controller) RegisterCustomer(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	return c.services.Catalog.RegisterCustomer(ctx, a)
}

func (c *Controller) AddMovie(ctx context.Context, m *domain.Movie) (*domain.Movie, error) {
	return c.services.Catalog.AddMovie(ctx, m)
}

func (c *Controller) CancelMovie(ctx context.Context, id int64) error {
	return c.services.Catalog.DeactivateMovie(ctx, id)
}

func (c *Controller) AddScreening(ctx context.Context, movieID int64, date, startTime, endTime, hallName string, seatPrice float64) (*domain.Screening, error) {
	return c.services.Catalog.AddScreening(ctx, movieID, date, startTime, endTime, hallName, seatPrice)
}

func (c *Controller) CancelScreening(ctx context.Context, id int64) error {
	return c.services.Catalog.DeactivateScreening(ctx, id)
}
