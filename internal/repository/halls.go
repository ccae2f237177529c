package repository

import (
	"context"
	"fmt"

	"github.com/cinelab/cinetix/internal/domain"
	"github.com/cinelab/cinetix/internal/store/jsonstore"
)

type HallRepo struct {
	store *jsonstore.Store
}

func NewHallRepo(store *jsonstore.Store) *HallRepo {
	return &HallRepo{store: store}
}

func (r *HallRepo) All(ctx context.Context) ([]*domain.Hall, error) {
	const op = "repository.HallRepo.All"

	var recs []HallRecord
	if err := r.store.Load(colHalls, &recs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	halls := make([]*domain.Hall, 0, len(recs))
	for _, rec := range recs {
		halls = append(halls, &domain.Hall{
			Name:     rec.HallName,
			Capacity: rec.HallCapacity,
		})
	}

	return halls, nil
}
