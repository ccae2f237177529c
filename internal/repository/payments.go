package repository

import (
	"context"
	"fmt"

	"github.com/cinelab/cinetix/internal/domain"
	"github.com/cinelab/cinetix/internal/store/jsonstore"
)

// PaymentRepo persists payment records. Like bookings, records reference
// coupons by code; the catalog resolves them when loading.
type PaymentRepo struct {
	store *jsonstore.Store
}

func NewPaymentRepo(store *jsonstore.Store) *PaymentRepo {
	return &PaymentRepo{store: store}
}

func (r *PaymentRepo) All(ctx context.Context) ([]PaymentRecord, error) {
	const op = "repository.PaymentRepo.All"

	var recs []PaymentRecord
	if err := r.store.Load(colPayments, &recs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return recs, nil
}

func (r *PaymentRepo) Append(ctx context.Context, p *domain.Payment) error {
	const op = "repository.PaymentRepo.Append"

	var recs []PaymentRecord
	err := r.store.Update(colPayments, &recs, func() error {
		recs = append(recs, paymentToRecord(p))
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Remove deletes a payment record. Used only to unwind a charge whose
// booking transition could not be persisted.
func (r *PaymentRepo) Remove(ctx context.Context, id int64) error {
	const op = "repository.PaymentRepo.Remove"

	var recs []PaymentRecord
	err := r.store.Update(colPayments, &recs, func() error {
		for i := range recs {
			if recs[i].PaymentID == id {
				recs = append(recs[:i], recs[i+1:]...)
				return nil
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func paymentToRecord(p *domain.Payment) PaymentRecord {
	rec := PaymentRecord{
		PaymentID:        p.ID,
		Amount:           p.Amount,
		CreatedOn:        p.CreatedOn.Format(timestampLayout),
		CreditCardNumber: p.CardNumber,
		CardType:         p.CardType,
		ExpiryDate:       p.ExpiryDate,
		NameOnCard:       p.NameOnCard,
	}

	if p.Coupon != nil {
		code := p.Coupon.Code
		rec.Coupon = &code
	}

	return rec
}
