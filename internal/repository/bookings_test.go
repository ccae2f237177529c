package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinelab/cinetix/internal/domain"
	"github.com/cinelab/cinetix/internal/repository"
	"github.com/cinelab/cinetix/internal/store/jsonstore"
)

func sampleBooking() *domain.Booking {
	return &domain.Booking{
		ID:       1,
		Customer: &domain.Account{Username: "alice", Role: domain.RoleCustomer},
		Movie:    &domain.Movie{ID: 100, Title: "Interstellar"},
		Screening: &domain.Screening{ID: 100, MovieID: 100, Seats: []*domain.Seat{
			{Row: 1, Number: 1, Price: 10},
			{Row: 1, Number: 2, Price: 10},
		}},
		NumSeats: 2,
		Seats: []*domain.Seat{
			{Row: 1, Number: 1, Price: 10},
			{Row: 1, Number: 2, Price: 10},
		},
		CreatedOn: time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
		Total:     20.00,
		Status:    domain.StatusPending,
	}
}

func TestBookingToRecord(t *testing.T) {
	b := sampleBooking()

	rec := repository.BookingToRecord(b)
	assert.Equal(t, int64(1), rec.BookingID)
	assert.Equal(t, "alice", rec.CustomerUsername)
	assert.Equal(t, int64(100), rec.MovieID)
	assert.Equal(t, int64(100), rec.ScreeningID)
	assert.Equal(t, 2, rec.NumOfSeats)
	assert.Equal(t, []string{"11", "12"}, rec.SelectedSeats)
	assert.Equal(t, "2026-08-29", rec.CreatedOn)
	assert.Equal(t, 20.00, rec.TotalAmount)
	assert.Equal(t, "Pending", rec.Status)
	assert.Nil(t, rec.PaymentID)
	assert.Nil(t, rec.Payment)
	assert.Empty(t, rec.Coupon)

	b.Payment = &domain.Payment{ID: 7}
	b.Coupon = &domain.Coupon{Code: "SAVE10"}
	rec = repository.BookingToRecord(b)
	require.NotNil(t, rec.PaymentID)
	assert.Equal(t, int64(7), *rec.PaymentID)
	require.NotNil(t, rec.Payment)
	assert.Equal(t, int64(7), *rec.Payment)
	assert.Equal(t, "SAVE10", rec.Coupon)
}

func TestBookingRepo(t *testing.T) {
	st := jsonstore.New(t.TempDir())
	repo := repository.NewBookingRepo(st)
	ctx := context.Background()

	recs, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs)

	require.NoError(t, repo.Append(ctx, sampleBooking()))

	require.NoError(t, repo.SetTotalAndCoupon(ctx, 1, 18.00, "SAVE10"))
	require.NoError(t, repo.SetPayment(ctx, 1, 7, domain.StatusPaid))

	recs, err = repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 18.00, recs[0].TotalAmount)
	assert.Equal(t, "SAVE10", recs[0].Coupon)
	assert.Equal(t, "Paid", recs[0].Status)
	require.NotNil(t, recs[0].PaymentID)
	assert.Equal(t, int64(7), *recs[0].PaymentID)
	require.NotNil(t, recs[0].Payment)
	assert.Equal(t, int64(7), *recs[0].Payment)

	require.NoError(t, repo.SetStatus(ctx, 1, domain.StatusRefunded))
	recs, err = repo.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Refunded", recs[0].Status)

	assert.ErrorIs(t, repo.SetStatus(ctx, 42, domain.StatusCanceled), repository.ErrNotFound)
}

func TestPaymentRepoRemove(t *testing.T) {
	st := jsonstore.New(t.TempDir())
	repo := repository.NewPaymentRepo(st)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, &domain.Payment{
		ID: 1, Amount: 20.00, CreatedOn: time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
		CardNumber: "************1111", CardType: "Visa", ExpiryDate: "2027-05", NameOnCard: "Alice Smith",
	}))
	require.NoError(t, repo.Append(ctx, &domain.Payment{
		ID: 2, Amount: 10.00, CreatedOn: time.Date(2026, 8, 29, 13, 0, 0, 0, time.UTC),
		CardNumber: "************4444", CardType: "MasterCard", ExpiryDate: "2027-05", NameOnCard: "Bob Jones",
	}))

	require.NoError(t, repo.Remove(ctx, 1))

	recs, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, int64(2), recs[0].PaymentID)

	assert.ErrorIs(t, repo.Remove(ctx, 1), repository.ErrNotFound)
}
