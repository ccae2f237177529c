// Package coupon validates discount codes against the catalog and the
// current date.
package coupon

import (
	"fmt"

	"github.com/cinelab/cinetix/internal/clock"
	"github.com/cinelab/cinetix/internal/domain"
	"github.com/cinelab/cinetix/internal/service/catalog"
)

type Service struct {
	catalog *catalog.Service
	clock   clock.Clock
}

func New(catalog *catalog.Service, c clock.Clock) *Service {
	if c == nil {
		c = clock.System()
	}
	return &Service{catalog: catalog, clock: c}
}

// Validate resolves a code to a usable coupon. Validity is computed at use
// time: the coupon is good through its expiration date, inclusive.
func (s *Service) Validate(code string) (*domain.Coupon, error) {
	const op = "coupon.Service.Validate"

	c := s.catalog.FindCoupon(code)
	if c == nil {
		return nil, fmt.Errorf("%s: %q: %w", op, code, ErrInvalid)
	}

	if !c.ValidOn(s.clock.Now()) {
		return nil, fmt.Errorf("%s: %q expired on %s: %w",
			op, code, c.ExpiresOn.Format("2006-01-02"), ErrInvalid)
	}

	return c, nil
}
