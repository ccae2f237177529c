// Package payment simulates the card processor. No network is involved:
// authorization succeeds iff the card parses, passes Luhn and is not
// expired, so outcomes are deterministic and testable.
package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cinelab/cinetix/internal/clock"
	"github.com/cinelab/cinetix/internal/domain"
	"github.com/google/uuid"
)

const expiryLayout = "2006-01"

// Simulator implements Gateway.
type Simulator struct {
	clock clock.Clock
}

func NewSimulator(c clock.Clock) *Simulator {
	return &Simulator{clock: c}
}

func (s *Simulator) Authorize(ctx context.Context, amount float64, card domain.Card) (*Authorization, error) {
	const op = "payment.Simulator.Authorize"

	if amount <= 0 {
		return nil, fmt.Errorf("%s: %w: amount must be positive", op, ErrDeclined)
	}

	number := normalize(card.Number)
	if len(number) < 13 || len(number) > 19 || !luhnValid(number) {
		return nil, fmt.Errorf("%s: %w: invalid card number", op, ErrDeclined)
	}

	expiry, err := time.Parse(expiryLayout, card.Expiry)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: bad expiry %q", op, ErrDeclined, card.Expiry)
	}

	// The expiry month must lie strictly in the future; a card expiring
	// this month is already expired.
	if !expiry.After(s.clock.Now()) {
		return nil, fmt.Errorf("%s: %w", op, ErrCardExpired)
	}

	return &Authorization{
		Reference: uuid.New(),
		CardType:  cardType(number),
		Last4:     number[len(number)-4:],
	}, nil
}

func (s *Simulator) Refund(ctx context.Context, p *domain.Payment) (uuid.UUID, error) {
	const op = "payment.Simulator.Refund"

	if p == nil {
		return uuid.Nil, fmt.Errorf("%s: %w: no payment to reverse", op, ErrRefundFailed)
	}

	return uuid.New(), nil
}

// Mask hides all but the last four digits for storage.
func Mask(number string) string {
	n := normalize(number)
	if len(n) <= 4 {
		return n
	}
	return strings.Repeat("*", len(n)-4) + n[len(n)-4:]
}

func normalize(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func luhnValid(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func cardType(number string) string {
	switch {
	case strings.HasPrefix(number, "4"):
		return "Visa"
	case len(number) >= 2 && number[0] == '5' && number[1] >= '1' && number[1] <= '5':
		return "MasterCard"
	case strings.HasPrefix(number, "34") || strings.HasPrefix(number, "37"):
		return "American Express"
	default:
		return "Card"
	}
}
