package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/cinelab/cinetix/internal/domain"
	"github.com/cinelab/cinetix/internal/store/jsonstore"
)

// CouponRepo reads the coupon collection. Coupons are immutable once loaded,
// so there is no write path.
type CouponRepo struct {
	store *jsonstore.Store
}

func NewCouponRepo(store *jsonstore.Store) *CouponRepo {
	return &CouponRepo{store: store}
}

func (r *CouponRepo) All(ctx context.Context) ([]*domain.Coupon, error) {
	const op = "repository.CouponRepo.All"

	var recs []CouponRecord
	if err := r.store.Load(colCoupons, &recs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	coupons := make([]*domain.Coupon, 0, len(recs))
	for _, rec := range recs {
		expires, err := time.Parse(dateLayout, rec.ExpirationDate)
		if err != nil {
			return nil, fmt.Errorf("%s: coupon %s: bad expiration_date %q: %w",
				op, rec.CouponCode, rec.ExpirationDate, err)
		}

		coupons = append(coupons, &domain.Coupon{
			Code:        rec.CouponCode,
			DiscountPct: rec.DiscountPercentage,
			ExpiresOn:   expires,
		})
	}

	return coupons, nil
}
