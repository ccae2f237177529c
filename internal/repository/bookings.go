package repository

import (
	"context"
	"fmt"

	"github.com/cinelab/cinetix/internal/domain"
	"github.com/cinelab/cinetix/internal/store/jsonstore"
)

// BookingRepo persists booking records. It deals in records rather than
// domain bookings because reconstructing a booking needs the catalog to
// resolve customer, movie, screening, seat and payment references; the
// ledger does that at load time.
type BookingRepo struct {
	store *jsonstore.Store
}

func NewBookingRepo(store *jsonstore.Store) *BookingRepo {
	return &BookingRepo{store: store}
}

func (r *BookingRepo) All(ctx context.Context) ([]BookingRecord, error) {
	const op = "repository.BookingRepo.All"

	var recs []BookingRecord
	if err := r.store.Load(colBookings, &recs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return recs, nil
}

func (r *BookingRepo) Append(ctx context.Context, b *domain.Booking) error {
	const op = "repository.BookingRepo.Append"

	var recs []BookingRecord
	err := r.store.Update(colBookings, &recs, func() error {
		recs = append(recs, BookingToRecord(b))
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *BookingRepo) SetStatus(ctx context.Context, id int64, status domain.Status) error {
	const op = "repository.BookingRepo.SetStatus"

	err := r.patch(id, func(rec *BookingRecord) {
		rec.Status = string(status)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *BookingRepo) SetPayment(ctx context.Context, id, paymentID int64, status domain.Status) error {
	const op = "repository.BookingRepo.SetPayment"

	err := r.patch(id, func(rec *BookingRecord) {
		rec.PaymentID = &paymentID
		rec.Payment = &paymentID
		rec.Status = string(status)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *BookingRepo) SetTotalAndCoupon(ctx context.Context, id int64, total float64, couponCode string) error {
	const op = "repository.BookingRepo.SetTotalAndCoupon"

	err := r.patch(id, func(rec *BookingRecord) {
		rec.TotalAmount = total
		rec.Coupon = couponCode
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *BookingRepo) patch(id int64, apply func(*BookingRecord)) error {
	var recs []BookingRecord
	return r.store.Update(colBookings, &recs, func() error {
		for i := range recs {
			if recs[i].BookingID == id {
				apply(&recs[i])
				return nil
			}
		}
		return ErrNotFound
	})
}

// BookingToRecord flattens a booking to its persisted shape.
func BookingToRecord(b *domain.Booking) BookingRecord {
	rec := BookingRecord{
		BookingID:        b.ID,
		CustomerUsername: b.Customer.Username,
		MovieID:          b.Movie.ID,
		ScreeningID:      b.Screening.ID,
		NumOfSeats:       b.NumSeats,
		SelectedSeats:    b.SeatIDs(),
		CreatedOn:        b.CreatedOn.Format(dateLayout),
		TotalAmount:      b.Total,
		Status:           string(b.Status),
	}

	if b.Payment != nil {
		id := b.Payment.ID
		rec.PaymentID = &id
		rec.Payment = &id
	}
	if b.Coupon != nil {
		rec.Coupon = b.Coupon.Code
	}

	return rec
}
