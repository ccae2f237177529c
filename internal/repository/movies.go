package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/cinelab/cinetix/internal/domain"
	"github.com/cinelab/cinetix/internal/store/jsonstore"
)

type MovieRepo struct {
	store *jsonstore.Store
}

func NewMovieRepo(store *jsonstore.Store) *MovieRepo {
	return &MovieRepo{store: store}
}

func (r *MovieRepo) All(ctx context.Context) ([]*domain.Movie, error) {
	const op = "repository.MovieRepo.All"

	var recs []MovieRecord
	if err := r.store.Load(colMovies, &recs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	movies := make([]*domain.Movie, 0, len(recs))
	for _, rec := range recs {
		released, err := time.Parse(dateLayout, rec.ReleaseDate)
		if err != nil {
			return nil, fmt.Errorf("%s: movie %d: bad release_date %q: %w",
				op, rec.MovieID, rec.ReleaseDate, err)
		}

		movies = append(movies, &domain.Movie{
			ID:          rec.MovieID,
			Title:       rec.Title,
			Language:    rec.Language,
			Genre:       rec.Genre,
			Country:     rec.Country,
			ReleaseDate: released,
			DurationMin: rec.Duration,
			Description: rec.Description,
			Active:      rec.IsActive,
		})
	}

	return movies, nil
}

func (r *MovieRepo) Append(ctx context.Context, m *domain.Movie) error {
	const op = "repository.MovieRepo.Append"

	var recs []MovieRecord
	err := r.store.Update(colMovies, &recs, func() error {
		recs = append(recs, movieToRecord(m))
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Deactivate patches is_active on the stored record; the movie itself is
// never removed while bookings may still reference it.
func (r *MovieRepo) Deactivate(ctx context.Context, id int64) error {
	const op = "repository.MovieRepo.Deactivate"

	var recs []MovieRecord
	err := r.store.Update(colMovies, &recs, func() error {
		for i := range recs {
			if recs[i].MovieID == id {
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

func movieToRecord(m *domain.Movie) MovieRecord {
	return MovieRecord{
		MovieID:     m.ID,
		Title:       m.Title,
		Language:    m.Language,
		Genre:       m.Genre,
		Country:     m.Country,
		ReleaseDate: m.ReleaseDate.Format(dateLayout),
		Duration:    m.DurationMin,
		Description: m.Description,
		IsActive:    m.Active,
	}
}
