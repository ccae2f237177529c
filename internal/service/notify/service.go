// Package notify appends human-readable booking notices. It is write-only:
// no business logic ever reads a notification back.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cinelab/cinetix/internal/clock"
	"github.com/cinelab/cinetix/internal/domain"
	"github.com/cinelab/cinetix/internal/repository"
	"github.com/cinelab/cinetix/internal/sequence"
)

type Service struct {
	repo   *repository.NotificationRepo
	seq    *sequence.Sequence
	clock  clock.Clock
	logger *slog.Logger
}

func New(repo *repository.NotificationRepo, seq *sequence.Sequence, c clock.Clock, logger *slog.Logger) *Service {
	if c == nil {
		c = clock.System()
	}
	return &Service{repo: repo, seq: seq, clock: c, logger: logger}
}

// Load seeds the id sequence from already persisted notices.
func (s *Service) Load(ctx context.Context) error {
	const op = "notify.Service.Load"

	recs, err := s.repo.All(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, rec := range recs {
		s.seq.Observe(rec.NotificationID)
	}
	return nil
}

func (s *Service) BookingConfirmed(ctx context.Context, b *domain.Booking) {
	s.append(ctx, b, "Booking Confirmed",
		fmt.Sprintf("Your booking #%d for %q on %s at %s has been confirmed. Total charged: %.2f.",
			b.ID, b.Movie.Title, b.Screening.Date, b.Screening.StartTime, b.Total))
}

func (s *Service) BookingCanceled(ctx context.Context, b *domain.Booking) {
	s.append(ctx, b, "Booking Canceled",
		fmt.Sprintf("Your booking #%d for %q on %s has been canceled.",
			b.ID, b.Movie.Title, b.Screening.Date))
}

func (s *Service) BookingRefunded(ctx context.Context, b *domain.Booking) {
	s.append(ctx, b, "Booking Refunded",
		fmt.Sprintf("Your booking #%d for %q has been refunded. Amount returned: %.2f.",
			b.ID, b.Movie.Title, b.Total))
}

// append is best-effort: a notice that fails to persist is logged and
// dropped, it never fails the transition that produced it.
func (s *Service) append(ctx context.Context, b *domain.Booking, subject, message string) {
	n := &domain.Notification{
		ID:               s.seq.Next(),
		CustomerUsername: b.Customer.Username,
		Subject:          subject,
		Message:          message,
		At:               s.clock.Now(),
		BookingID:        b.ID,
	}

	if err := s.repo.Append(ctx, n); err != nil {
		s.logger.Warn("failed to persist notification",
			"booking_id", b.ID, "subject", subject, "error", err)
	}
}
