// Package inventory owns the reservation flag of every seat. Nothing else
// in the system may flip it.
package inventory

import (
	"context"
	"fmt"
	"sync"

	"github.com/cinelab/cinetix/internal/domain"
	"github.com/cinelab/cinetix/internal/repository"
)

type Service struct {
	screenings *repository.ScreeningRepo

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func New(screenings *repository.ScreeningRepo) *Service {
	return &Service{
		screenings: screenings,
		locks:      make(map[int64]*sync.Mutex),
	}
}

// LockScreening serializes check-reserve-persist critical sections for one
// screening. The returned func releases the lock.
func (s *Service) LockScreening(screeningID int64) func() {
	s.mu.Lock()
	l, ok := s.locks[screeningID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[screeningID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// IsAvailable reports whether none of the requested seats are reserved.
// Side-effect free; an unknown seat id is a lookup error, not "unavailable".
func (s *Service) IsAvailable(screening *domain.Screening, seatIDs []string) (bool, error) {
	const op = "inventory.Service.IsAvailable"

	for _, id := range seatIDs {
		seat := screening.SeatByID(id)
		if seat == nil {
			return false, fmt.Errorf("%s: %w", op, SeatNotFoundError{ScreeningID: screening.ID, SeatID: id})
		}
		if seat.Reserved {
			return false, nil
		}
	}

	return true, nil
}

// Reserve marks the seats reserved and persists the screening. Re-reserving
// an already reserved seat is a no-op so a retried persistence step cannot
// fail halfway. If the write fails, seats flipped by this call are reverted.
func (s *Service) Reserve(ctx context.Context, screening *domain.Screening, seatIDs []string) error {
	const op = "inventory.Service.Reserve"

	if err := s.setReserved(ctx, screening, seatIDs, true); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Release is the inverse of Reserve, called on refund. Idempotent.
func (s *Service) Release(ctx context.Context, screening *domain.Screening, seatIDs []string) error {
	const op = "inventory.Service.Release"

	if err := s.setReserved(ctx, screening, seatIDs, false); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) setReserved(ctx context.Context, screening *domain.Screening, seatIDs []string, reserved bool) error {
	flipped := make([]*domain.Seat, 0, len(seatIDs))
	for _, id := range seatIDs {
		seat := screening.SeatByID(id)
		if seat == nil {
			// Revert before reporting: partial flips must not survive.
			for _, f := range flipped {
				f.Reserved = !reserved
			}
			return SeatNotFoundError{ScreeningID: screening.ID, SeatID: id}
		}
		if seat.Reserved != reserved {
			seat.Reserved = reserved
			flipped = append(flipped, seat)
		}
	}

	if err := s.screenings.SetReserved(ctx, screening.ID, seatIDs, reserved); err != nil {
		for _, f := range flipped {
			f.Reserved = !reserved
		}
		return err
	}

	return nil
}
