package repository

import (
	"context"
	"fmt"

	"github.com/cinelab/cinetix/internal/domain"
	"github.com/cinelab/cinetix/internal/store/jsonstore"
)

// NotificationRepo is append-heavy: notices are written on booking events
// and only read back to seed the id sequence at startup.
type NotificationRepo struct {
	store *jsonstore.Store
}

func NewNotificationRepo(store *jsonstore.Store) *NotificationRepo {
	return &NotificationRepo{store: store}
}

func (r *NotificationRepo) All(ctx context.Context) ([]NotificationRecord, error) {
	const op = "repository.NotificationRepo.All"

	var recs []NotificationRecord
	if err := r.store.Load(colNotifications, &recs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return recs, nil
}

func (r *NotificationRepo) Append(ctx context.Context, n *domain.Notification) error {
	const op = "repository.NotificationRepo.Append"

	rec := NotificationRecord{
		NotificationID:   n.ID,
		CustomerUsername: n.CustomerUsername,
		Subject:          n.Subject,
		Message:          n.Message,
		DateTime:         n.At.Format(notifyTimestampLayout),
	}
	if n.BookingID != 0 {
		id := n.BookingID
		rec.BookingID = &id
	}

	var recs []NotificationRecord
	err := r.store.Update(colNotifications, &recs, func() error {
		recs = append(recs, rec)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
