package payment

import (
	"context"

	"github.com/cinelab/cinetix/internal/domain"
	"github.com/google/uuid"
)

// Authorization is the gateway's answer to a successful charge. The
// reference is not persisted (payment records have a fixed shape); it
// exists for logging and for a future real gateway to anchor settlement on.
type Authorization struct {
	Reference uuid.UUID
	CardType  string
	Last4     string
}

// Gateway is the processor boundary. The bundled implementation simulates
// outcomes deterministically from input validity; a real processor can be
// substituted without touching the booking ledger.
type Gateway interface {
	Authorize(ctx context.Context, amount float64, card domain.Card) (*Authorization, error)
	Refund(ctx context.Context, p *domain.Payment) (uuid.UUID, error)
}
