package service

import (
	"log/slog"

	"github.com/cinelab/cinetix/internal/clock"
	"github.com/cinelab/cinetix/internal/repository"
	"github.com/cinelab/cinetix/internal/sequence"
	"github.com/cinelab/cinetix/internal/service/booking"
	"github.com/cinelab/cinetix/internal/service/catalog"
	"github.com/cinelab/cinetix/internal/service/coupon"
	"github.com/cinelab/cinetix/internal/service/inventory"
	"github.com/cinelab/cinetix/internal/service/notify"
	"github.com/cinelab/cinetix/internal/service/payment"
	"github.com/cinelab/cinetix/internal/store/jsonstore"
)

type Services struct {
	Catalog   *catalog.Service
	Inventory *inventory.Service
	Coupons   *coupon.Service
	Ledger    *booking.Service
	Notifier  *notify.Service
}

type Config struct {
	SeatsPerRow int
	Clock       clock.Clock
	Gateway     payment.Gateway
	Logger      *slog.Logger
}

// Id floors match the original data files: movies, screenings and
// notifications historically start at 100, bookings and payments at 1.
func NewServices(store *jsonstore.Store, cfg Config) *Services {
	if cfg.Clock == nil {
		cfg.Clock = clock.System()
	}
	if cfg.Gateway == nil {
		cfg.Gateway = payment.NewSimulator(cfg.Clock)
	}

	movieRepo := repository.NewMovieRepo(store)
	screeningRepo := repository.NewScreeningRepo(store)
	hallRepo := repository.NewHallRepo(store)
	accountRepo := repository.NewAccountRepo(store)
	couponRepo := repository.NewCouponRepo(store)
	paymentRepo := repository.NewPaymentRepo(store)
	bookingRepo := repository.NewBookingRepo(store)
	notificationRepo := repository.NewNotificationRepo(store)

	paymentSeq := sequence.New(1)

	cat := catalog.New(catalog.Config{
		Movies:       movieRepo,
		Screenings:   screeningRepo,
		Halls:        hallRepo,
		Accounts:     accountRepo,
		Coupons:      couponRepo,
		Payments:     paymentRepo,
		MovieSeq:     sequence.New(100),
		ScreeningSeq: sequence.New(100),
		PaymentSeq:   paymentSeq,
		SeatsPerRow:  cfg.SeatsPerRow,
		Clock:        cfg.Clock,
	})

	inv := inventory.New(screeningRepo)
	coupons := coupon.New(cat, cfg.Clock)
	notifier := notify.New(notificationRepo, sequence.New(100), cfg.Clock, cfg.Logger)

	ledger := booking.New(booking.Config{
		Catalog:    cat,
		Inventory:  inv,
		Coupons:    coupons,
		Gateway:    cfg.Gateway,
		Notifier:   notifier,
		Bookings:   bookingRepo,
		Payments:   paymentRepo,
		BookingSeq: sequence.New(1),
		PaymentSeq: paymentSeq,
		Clock:      cfg.Clock,
		Logger:     cfg.Logger,
	})

	return &Services{
		Catalog:   cat,
		Inventory: inv,
		Coupons:   coupons,
		Ledger:    ledger,
		Notifier:  notifier,
	}
}
