package repository

import (
	"context"
	"fmt"

	"github.com/cinelab/cinetix/internal/domain"
	"github.com/cinelab/cinetix/internal/store/jsonstore"
)

type ScreeningRepo struct {
	store *jsonstore.Store
}

func NewScreeningRepo(store *jsonstore.Store) *ScreeningRepo {
	return &ScreeningRepo{store: store}
}

func (r *ScreeningRepo) All(ctx context.Context) ([]*domain.Screening, error) {
	const op = "repository.ScreeningRepo.All"

	var recs []ScreeningRecord
	if err := r.store.Load(colScreenings, &recs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	screenings := make([]*domain.Screening, 0, len(recs))
	for _, rec := range recs {
		screenings = append(screenings, screeningFromRecord(rec))
	}

	return screenings, nil
}

func (r *ScreeningRepo) Append(ctx context.Context, sc *domain.Screening) error {
	const op = "repository.ScreeningRepo.Append"

	var recs []ScreeningRecord
	err := r.store.Update(colScreenings, &recs, func() error {
		recs = append(recs, screeningToRecord(sc))
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *ScreeningRepo) Deactivate(ctx context.Context, id int64) error {
	const op = "repository.ScreeningRepo.Deactivate"

	var recs []ScreeningRecord
	err := r.store.Update(colScreenings, &recs, func() error {
		for i := range recs {
			if recs[i].ScreeningID == id {
				recs[i].IsActive = false
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

// SetReserved patches the reservation flag of the given seats on one stored
// screening. Seat ids not present on the screening are ignored here; the
// inventory service validates them before calling.
func (r *ScreeningRepo) SetReserved(ctx context.Context, screeningID int64, seatIDs []string, reserved bool) error {
	const op = "repository.ScreeningRepo.SetReserved"

	wanted := make(map[string]bool, len(seatIDs))
	for _, id := range seatIDs {
		wanted[id] = true
	}

	var recs []ScreeningRecord
	err := r.store.Update(colScreenings, &recs, func() error {
		for i := range recs {
			if recs[i].ScreeningID != screeningID {
				continue
			}
			for j := range recs[i].Seats {
				seat := &recs[i].Seats[j]
				if wanted[seatRecordID(*seat)] {
					seat.IsReserved = reserved
				}
			}
			return nil
		}
		return ErrNotFound
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func seatRecordID(s SeatRecord) string {
	return fmt.Sprintf("%d%d", s.RowNumber, s.SeatNumber)
}

func screeningFromRecord(rec ScreeningRecord) *domain.Screening {
	seats := make([]*domain.Seat, 0, len(rec.Seats))
	for _, s := range rec.Seats {
		seats = append(seats, &domain.Seat{
			Row:      s.RowNumber,
			Number:   s.SeatNumber,
			Reserved: s.IsReserved,
			Price:    s.SeatPrice,
		})
	}

	return &domain.Screening{
		ID:        rec.ScreeningID,
		MovieID:   rec.MovieID,
		Date:      rec.ScreeningDate,
		StartTime: rec.StartTime,
		EndTime:   rec.EndTime,
		HallName:  rec.HallName,
		Seats:     seats,
		Active:    rec.IsActive,
	}
}

func screeningToRecord(sc *domain.Screening) ScreeningRecord {
	seats := make([]SeatRecord, 0, len(sc.Seats))
	for _, s := range sc.Seats {
		seats = append(seats, SeatRecord{
			SeatNumber: s.Number,
			RowNumber:  s.Row,
			IsReserved: s.Reserved,
			SeatPrice:  s.Price,
		})
	}

	return ScreeningRecord{
		ScreeningID:   sc.ID,
		MovieID:       sc.MovieID,
		ScreeningDate: sc.Date,
		StartTime:     sc.StartTime,
		EndTime:       sc.EndTime,
		HallName:      sc.HallName,
		Seats:         seats,
		IsActive:      sc.Active,
	}
}
