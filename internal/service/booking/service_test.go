package booking_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinelab/cinetix/internal/clock"
	"github.com/cinelab/cinetix/internal/domain"
	"github.com/cinelab/cinetix/internal/repository"
	"github.com/cinelab/cinetix/internal/service"
	"github.com/cinelab/cinetix/internal/service/booking"
	"github.com/cinelab/cinetix/internal/service/coupon"
	"github.com/cinelab/cinetix/internal/service/inventory"
	"github.com/cinelab/cinetix/internal/service/payment"
	mock_payment "github.com/cinelab/cinetix/internal/service/payment/mocks"
	"github.com/cinelab/cinetix/internal/store/jsonstore"
)

var testNow = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

var (
	visaCard = domain.Card{Number: "4111 1111 1111 1111", Expiry: "2027-05", Holder: "Alice Smith"}
)

type fixture struct {
	t        *testing.T
	ctx      context.Context
	dir      string
	store    *jsonstore.Store
	services *service.Services
}

// newFixture seeds a temp database with one movie, one screening (two rows
// of ten seats at 10.00 each), two customers and three coupons, then warms
// a full service stack on top of it.
func newFixture(t *testing.T, gw payment.Gateway) *fixture {
	t.Helper()

	dir := t.TempDir()
	st := jsonstore.New(dir)

	require.NoError(t, st.Replace("customers", []repository.AccountRecord{
		{Name: "Alice Smith", Email: "alice@example.com", Phone: "555-0101", Username: "alice", Password: "secret"},
		{Name: "Bob Jones", Email: "bob@example.com", Phone: "555-0102", Username: "bob", Password: "secret"},
	}))
	require.NoError(t, st.Replace("cinema_hall", []repository.HallRecord{
		{HallName: "Hall A", HallCapacity: 20},
	}))
	require.NoError(t, st.Replace("movies", []repository.MovieRecord{
		{MovieID: 100, Title: "Interstellar", Language: "English", Genre: "Sci-Fi",
			Country: "USA", ReleaseDate: "2014-11-07", Duration: 169, IsActive: true},
	}))
	require.NoError(t, st.Replace("screenings", []repository.ScreeningRecord{
		{ScreeningID: 100, MovieID: 100, ScreeningDate: "2026-09-05",
			StartTime: "18:00", EndTime: "20:49", HallName: "Hall A",
			Seats: seatGrid(2, 10, 10.00), IsActive: true},
	}))
	require.NoError(t, st.Replace("coupons", []repository.CouponRecord{
		{CouponCode: "SAVE10", DiscountPercentage: 10, ExpirationDate: "2026-12-31"},
		{CouponCode: "WELCOME5", DiscountPercentage: 5, ExpirationDate: "2026-08-29"},
		{CouponCode: "OLD15", DiscountPercentage: 15, ExpirationDate: "2026-01-01"},
	}))

	svcs := service.NewServices(st, service.Config{
		SeatsPerRow: 10,
		Clock:       clock.Fixed(testNow),
		Gateway:     gw,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	ctx := context.Background()
	require.NoError(t, svcs.Catalog.Load(ctx))
	require.NoError(t, svcs.Notifier.Load(ctx))
	require.NoError(t, svcs.Ledger.Load(ctx))

	return &fixture{t: t, ctx: ctx, dir: dir, store: st, services: svcs}
}

// corrupt overwrites one collection file with junk so the next write to it
// fails its read-modify-write cycle.
func (f *fixture) corrupt(collection string) {
	f.t.Helper()
	require.NoError(f.t, os.WriteFile(filepath.Join(f.dir, collection+".json"), []byte("{"), 0o644))
}

func seatGrid(rows, perRow int, price float64) []repository.SeatRecord {
	seats := make([]repository.SeatRecord, 0, rows*perRow)
	for row := 1; row <= rows; row++ {
		for number := 1; number <= perRow; number++ {
			seats = append(seats, repository.SeatRecord{RowNumber: row, SeatNumber: number, SeatPrice: price})
		}
	}
	return seats
}

func (f *fixture) create(username string, seatIDs ...string) *domain.Booking {
	f.t.Helper()

	customer := f.services.Catalog.FindCustomer(username)
	require.NotNil(f.t, customer)
	movie := f.services.Catalog.FindMovie(100)
	require.NotNil(f.t, movie)
	screening := f.services.Catalog.ScreeningByID(100)
	require.NotNil(f.t, screening)

	b, err := f.services.Ledger.Create(f.ctx, customer, movie, screening, seatIDs)
	require.NoError(f.t, err)
	return b
}

func (f *fixture) bookingRecord(id int64) repository.BookingRecord {
	f.t.Helper()

	recs, err := repository.NewBookingRepo(f.store).All(f.ctx)
	require.NoError(f.t, err)
	for _, rec := range recs {
		if rec.BookingID == id {
			return rec
		}
	}
	f.t.Fatalf("booking %d not persisted", id)
	return repository.BookingRecord{}
}

func (f *fixture) paymentRecords() []repository.PaymentRecord {
	f.t.Helper()

	recs, err := repository.NewPaymentRepo(f.store).All(f.ctx)
	require.NoError(f.t, err)
	return recs
}

func (f *fixture) storedSeatReserved(seatID string) bool {
	f.t.Helper()

	screenings, err := repository.NewScreeningRepo(f.store).All(f.ctx)
	require.NoError(f.t, err)
	for _, sc := range screenings {
		if sc.ID == 100 {
			seat := sc.SeatByID(seatID)
			require.NotNil(f.t, seat)
			return seat.Reserved
		}
	}
	f.t.Fatal("screening 100 not persisted")
	return false
}

func (f *fixture) notificationSubjects() []string {
	f.t.Helper()

	recs, err := repository.NewNotificationRepo(f.store).All(f.ctx)
	require.NoError(f.t, err)
	subjects := make([]string, 0, len(recs))
	for _, rec := range recs {
		subjects = append(subjects, rec.Subject)
	}
	return subjects
}

func TestCreate(t *testing.T) {
	f := newFixture(t, payment.NewSimulator(clock.Fixed(testNow)))

	b := f.create("alice", "11", "12")

	assert.Equal(t, int64(1), b.ID)
	assert.Equal(t, domain.StatusPending, b.Status)
	assert.Equal(t, 2, b.NumSeats)
	assert.Equal(t, 20.00, b.Total)
	assert.Equal(t, []string{"11", "12"}, b.SeatIDs())

	// Creating a booking must not reserve anything yet.
	screening := f.services.Catalog.ScreeningByID(100)
	assert.False(t, screening.SeatByID("11").Reserved)
	assert.False(t, f.storedSeatReserved("11"))

	rec := f.bookingRecord(1)
	assert.Equal(t, "alice", rec.CustomerUsername)
	assert.Equal(t, "Pending", rec.Status)
	assert.Equal(t, "2026-08-29", rec.CreatedOn)
	assert.Nil(t, rec.PaymentID)
	assert.Empty(t, rec.Coupon)
}

func TestCreate_Errors(t *testing.T) {
	f := newFixture(t, payment.NewSimulator(clock.Fixed(testNow)))

	customer := f.services.Catalog.FindCustomer("alice")
	movie := f.services.Catalog.FindMovie(100)
	screening := f.services.Catalog.ScreeningByID(100)

	_, err := f.services.Ledger.Create(f.ctx, customer, movie, screening, nil)
	assert.Error(t, err)

	_, err = f.services.Ledger.Create(f.ctx, customer, movie, screening, []string{"11", "99"})
	assert.ErrorIs(t, err, inventory.ErrSeatNotFound)

	// The same physical seat cannot be selected twice in one booking.
	_, err = f.services.Ledger.Create(f.ctx, customer, movie, screening, []string{"11", "11"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than once")
	assert.Equal(t, 0, f.services.Ledger.Count())

	recs, err := repository.NewBookingRepo(f.store).All(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestCreate_DuplicatePending(t *testing.T) {
	f := newFixture(t, payment.NewSimulator(clock.Fixed(testNow)))

	b := f.create("alice", "11")

	customer := f.services.Catalog.FindCustomer("alice")
	movie := f.services.Catalog.FindMovie(100)
	screening := f.services.Catalog.ScreeningByID(100)

	_, err := f.services.Ledger.Create(f.ctx, customer, movie, screening, []string{"13"})
	assert.ErrorIs(t, err, booking.ErrDuplicateBooking)

	// A different customer may hold a pending booking for the same screening.
	other := f.create("bob", "14")
	assert.Equal(t, int64(2), other.ID)

	// Once the first booking leaves Pending, alice may book again.
	_, err = f.services.Ledger.Cancel(f.ctx, b.ID)
	require.NoError(t, err)
	again := f.create("alice", "13")
	assert.Equal(t, int64(3), again.ID)
}

func TestApplyCoupon(t *testing.T) {
	f := newFixture(t, payment.NewSimulator(clock.Fixed(testNow)))

	b := f.create("alice", "11", "12")

	got, err := f.services.Ledger.ApplyCoupon(f.ctx, b.ID, "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, 18.00, got.Total)
	require.NotNil(t, got.Coupon)
	assert.Equal(t, "SAVE10", got.Coupon.Code)

	rec := f.bookingRecord(b.ID)
	assert.Equal(t, 18.00, rec.TotalAmount)
	assert.Equal(t, "SAVE10", rec.Coupon)

	// Only one coupon per booking.
	_, err = f.services.Ledger.ApplyCoupon(f.ctx, b.ID, "WELCOME5")
	assert.ErrorIs(t, err, coupon.ErrAlreadyApplied)
}

func TestApplyCoupon_Errors(t *testing.T) {
	f := newFixture(t, payment.NewSimulator(clock.Fixed(testNow)))

	b := f.create("alice", "11")

	_, err := f.services.Ledger.ApplyCoupon(f.ctx, b.ID, "OLD15")
	assert.ErrorIs(t, err, coupon.ErrInvalid)

	_, err = f.services.Ledger.ApplyCoupon(f.ctx, b.ID, "NOSUCH")
	assert.ErrorIs(t, err, coupon.ErrInvalid)

	_, err = f.services.Ledger.ApplyCoupon(f.ctx, 42, "SAVE10")
	assert.ErrorIs(t, err, booking.ErrBookingNotFound)

	// A coupon expiring today is still good today.
	got, err := f.services.Ledger.ApplyCoupon(f.ctx, b.ID, "WELCOME5")
	require.NoError(t, err)
	assert.Equal(t, 9.50, got.Total)
}

func TestPay(t *testing.T) {
	f := newFixture(t, payment.NewSimulator(clock.Fixed(testNow)))

	b := f.create("alice", "11", "12")

	got, err := f.services.Ledger.Pay(f.ctx, b.ID, visaCard)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPaid, got.Status)
	require.NotNil(t, got.Payment)
	assert.Equal(t, int64(1), got.Payment.ID)
	assert.Equal(t, 20.00, got.Payment.Amount)
	assert.Equal(t, "Visa", got.Payment.CardType)
	assert.Equal(t, "************1111", got.Payment.CardNumber)
	assert.Equal(t, "Alice Smith", got.Payment.NameOnCard)

	// Seats are reserved in memory and on disk.
	screening := f.services.Catalog.ScreeningByID(100)
	assert.True(t, screening.SeatByID("11").Reserved)
	assert.True(t, screening.SeatByID("12").Reserved)
	assert.True(t, f.storedSeatReserved("11"))
	assert.True(t, f.storedSeatReserved("12"))

	rec := f.bookingRecord(b.ID)
	assert.Equal(t, "Paid", rec.Status)
	require.NotNil(t, rec.PaymentID)
	assert.Equal(t, int64(1), *rec.PaymentID)

	payments := f.paymentRecords()
	require.Len(t, payments, 1)
	assert.Equal(t, 20.00, payments[0].Amount)
	assert.Equal(t, "************1111", payments[0].CreditCardNumber)
	assert.Equal(t, "2026-08-29 12:00:00", payments[0].CreatedOn)

	// The catalog indexes the new payment for lookups.
	assert.NotNil(t, f.services.Catalog.FindPayment(1))

	assert.Contains(t, f.notificationSubjects(), "Booking Confirmed")
}

func TestPay_ChargesDiscountedTotal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := mock_payment.NewMockGateway(ctrl)
	f := newFixture(t, gw)

	b := f.create("alice", "11", "12")
	_, err := f.services.Ledger.ApplyCoupon(f.ctx, b.ID, "SAVE10")
	require.NoError(t, err)

	gw.EXPECT().
		Authorize(gomock.Any(), 18.00, visaCard).
		Return(&payment.Authorization{Reference: uuid.New(), CardType: "Visa", Last4: "1111"}, nil)

	got, err := f.services.Ledger.Pay(f.ctx, b.ID, visaCard)
	require.NoError(t, err)
	assert.Equal(t, 18.00, got.Payment.Amount)
	require.NotNil(t, got.Payment.Coupon)
	assert.Equal(t, "SAVE10", got.Payment.Coupon.Code)

	payments := f.paymentRecords()
	require.Len(t, payments, 1)
	require.NotNil(t, payments[0].Coupon)
	assert.Equal(t, "SAVE10", *payments[0].Coupon)
}

func TestPay_Declined(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := mock_payment.NewMockGateway(ctrl)
	f := newFixture(t, gw)

	b := f.create("alice", "11")

	gw.EXPECT().
		Authorize(gomock.Any(), 10.00, gomock.Any()).
		Return(nil, payment.ErrDeclined)

	_, err := f.services.Ledger.Pay(f.ctx, b.ID, visaCard)
	assert.ErrorIs(t, err, payment.ErrDeclined)

	// A declined charge leaves everything untouched.
	assert.Equal(t, domain.StatusPending, f.services.Ledger.Find(b.ID).Status)
	assert.Equal(t, "Pending", f.bookingRecord(b.ID).Status)
	assert.Empty(t, f.paymentRecords())
	assert.False(t, f.storedSeatReserved("11"))
}

// TestPay_PersistFailureRollsBack fails each write of the Pay transition in
// turn and checks the earlier steps are unwound: the charge is reversed, the
// payment record removed, the seats released, and the booking stays Pending.
func TestPay_PersistFailureRollsBack(t *testing.T) {
	auth := func() *payment.Authorization {
		return &payment.Authorization{Reference: uuid.New(), CardType: "Visa", Last4: "1111"}
	}

	t.Run("payment record write fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		gw := mock_payment.NewMockGateway(ctrl)
		f := newFixture(t, gw)
		b := f.create("alice", "11")

		f.corrupt("payments")
		gw.EXPECT().Authorize(gomock.Any(), 10.00, gomock.Any()).Return(auth(), nil)
		gw.EXPECT().Refund(gomock.Any(), gomock.Any()).Return(uuid.New(), nil)

		_, err := f.services.Ledger.Pay(f.ctx, b.ID, visaCard)
		require.Error(t, err)
		assert.ErrorIs(t, err, jsonstore.ErrMalformed)

		assert.Equal(t, domain.StatusPending, f.services.Ledger.Find(b.ID).Status)
		assert.False(t, f.services.Catalog.ScreeningByID(100).SeatByID("11").Reserved)
	})

	t.Run("seat reservation write fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		gw := mock_payment.NewMockGateway(ctrl)
		f := newFixture(t, gw)
		b := f.create("alice", "11")

		f.corrupt("screenings")
		gw.EXPECT().Authorize(gomock.Any(), 10.00, gomock.Any()).Return(auth(), nil)
		gw.EXPECT().Refund(gomock.Any(), gomock.Any()).Return(uuid.New(), nil)

		_, err := f.services.Ledger.Pay(f.ctx, b.ID, visaCard)
		require.Error(t, err)

		// The payment record written a step earlier has been removed again.
		assert.Empty(t, f.paymentRecords())
		assert.Equal(t, domain.StatusPending, f.services.Ledger.Find(b.ID).Status)
		assert.False(t, f.services.Catalog.ScreeningByID(100).SeatByID("11").Reserved)
	})

	t.Run("booking status write fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		gw := mock_payment.NewMockGateway(ctrl)
		f := newFixture(t, gw)
		b := f.create("alice", "11")

		f.corrupt("bookings")
		gw.EXPECT().Authorize(gomock.Any(), 10.00, gomock.Any()).Return(auth(), nil)
		gw.EXPECT().Refund(gomock.Any(), gomock.Any()).Return(uuid.New(), nil)

		_, err := f.services.Ledger.Pay(f.ctx, b.ID, visaCard)
		require.Error(t, err)

		assert.Empty(t, f.paymentRecords())
		assert.False(t, f.storedSeatReserved("11"))
		assert.Equal(t, domain.StatusPending, f.services.Ledger.Find(b.ID).Status)
	})
}

func TestPay_SeatConflict(t *testing.T) {
	f := newFixture(t, payment.NewSimulator(clock.Fixed(testNow)))

	alice := f.create("alice", "11", "12")
	bob := f.create("bob", "12", "13")

	_, err := f.services.Ledger.Pay(f.ctx, alice.ID, visaCard)
	require.NoError(t, err)

	// Seat 12 went to alice; bob's booking can no longer be paid.
	_, err = f.services.Ledger.Pay(f.ctx, bob.ID, visaCard)
	assert.ErrorIs(t, err, booking.ErrSeatConflict)
	assert.Equal(t, domain.StatusPending, f.services.Ledger.Find(bob.ID).Status)
	assert.Equal(t, "Pending", f.bookingRecord(bob.ID).Status)

	// Nor can anyone open a new booking over a reserved seat.
	customer := f.services.Catalog.FindCustomer("bob")
	movie := f.services.Catalog.FindMovie(100)
	screening := f.services.Catalog.ScreeningByID(100)
	_, err = f.services.Ledger.Create(f.ctx, customer, movie, screening, []string{"11"})
	assert.ErrorIs(t, err, booking.ErrSeatConflict)
}

func TestCancel(t *testing.T) {
	f := newFixture(t, payment.NewSimulator(clock.Fixed(testNow)))

	b := f.create("alice", "11")

	got, err := f.services.Ledger.Cancel(f.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCanceled, got.Status)
	assert.Equal(t, "Canceled", f.bookingRecord(b.ID).Status)
	assert.Contains(t, f.notificationSubjects(), "Booking Canceled")

	_, err = f.services.Ledger.Cancel(f.ctx, b.ID)
	assert.ErrorIs(t, err, booking.ErrIllegalTransition)
}

func TestRefund(t *testing.T) {
	f := newFixture(t, payment.NewSimulator(clock.Fixed(testNow)))

	b := f.create("alice", "11", "12")
	_, err := f.services.Ledger.Pay(f.ctx, b.ID, visaCard)
	require.NoError(t, err)

	got, err := f.services.Ledger.Refund(f.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRefunded, got.Status)
	assert.Equal(t, "Refunded", f.bookingRecord(b.ID).Status)

	// Refunding puts the seats back on sale.
	screening := f.services.Catalog.ScreeningByID(100)
	assert.False(t, screening.SeatByID("11").Reserved)
	assert.False(t, f.storedSeatReserved("11"))
	assert.False(t, f.storedSeatReserved("12"))

	assert.Contains(t, f.notificationSubjects(), "Booking Refunded")
}

func TestIllegalTransitions(t *testing.T) {
	f := newFixture(t, payment.NewSimulator(clock.Fixed(testNow)))

	pending := f.create("alice", "11")
	paid := f.create("bob", "12")
	_, err := f.services.Ledger.Pay(f.ctx, paid.ID, visaCard)
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
	}{
		{"refund pending", func() error { _, err := f.services.Ledger.Refund(f.ctx, pending.ID); return err }},
		{"cancel paid", func() error { _, err := f.services.Ledger.Cancel(f.ctx, paid.ID); return err }},
		{"pay paid", func() error { _, err := f.services.Ledger.Pay(f.ctx, paid.ID, visaCard); return err }},
		{"coupon on paid", func() error { _, err := f.services.Ledger.ApplyCoupon(f.ctx, paid.ID, "SAVE10"); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			assert.ErrorIs(t, err, booking.ErrIllegalTransition)

			var ite booking.IllegalTransitionError
			if errors.As(err, &ite) {
				assert.NotZero(t, ite.BookingID)
				assert.True(t, strings.Contains(ite.Error(), "cannot transition"))
			}
		})
	}

	// Terminal states stay terminal.
	_, err = f.services.Ledger.Refund(f.ctx, paid.ID)
	require.NoError(t, err)
	_, err = f.services.Ledger.Pay(f.ctx, paid.ID, visaCard)
	assert.ErrorIs(t, err, booking.ErrIllegalTransition)
	_, err = f.services.Ledger.Refund(f.ctx, paid.ID)
	assert.ErrorIs(t, err, booking.ErrIllegalTransition)
}

// TestLoad_RestoresLedger boots a second stack over the same data directory
// and checks the paid booking survives the round trip fully resolved.
func TestLoad_RestoresLedger(t *testing.T) {
	f := newFixture(t, payment.NewSimulator(clock.Fixed(testNow)))

	b := f.create("alice", "11", "12")
	_, err := f.services.Ledger.ApplyCoupon(f.ctx, b.ID, "SAVE10")
	require.NoError(t, err)
	_, err = f.services.Ledger.Pay(f.ctx, b.ID, visaCard)
	require.NoError(t, err)

	reloaded := service.NewServices(f.store, service.Config{
		SeatsPerRow: 10,
		Clock:       clock.Fixed(testNow),
		Gateway:     payment.NewSimulator(clock.Fixed(testNow)),
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, reloaded.Catalog.Load(f.ctx))
	require.NoError(t, reloaded.Notifier.Load(f.ctx))
	require.NoError(t, reloaded.Ledger.Load(f.ctx))

	got := reloaded.Ledger.Find(b.ID)
	require.NotNil(t, got)
	assert.Equal(t, domain.StatusPaid, got.Status)
	assert.Equal(t, 18.00, got.Total)
	assert.Equal(t, []string{"11", "12"}, got.SeatIDs())
	require.NotNil(t, got.Payment)
	assert.Equal(t, "************1111", got.Payment.CardNumber)
	require.NotNil(t, got.Coupon)
	assert.Equal(t, "SAVE10", got.Coupon.Code)
	assert.True(t, got.Screening.SeatByID("11").Reserved)

	mine := reloaded.Ledger.ForCustomer("alice")
	require.Len(t, mine, 1)
	assert.Equal(t, b.ID, mine[0].ID)

	// Sequences resume past persisted ids.
	fresh, err := reloaded.Ledger.Create(f.ctx,
		reloaded.Catalog.FindCustomer("bob"),
		reloaded.Catalog.FindMovie(100),
		reloaded.Catalog.ScreeningByID(100),
		[]string{"22"})
	require.NoError(t, err)
	assert.Greater(t, fresh.ID, b.ID)
}
