package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinelab/cinetix/internal/domain"
	"github.com/cinelab/cinetix/internal/repository"
	"github.com/cinelab/cinetix/internal/service/inventory"
	"github.com/cinelab/cinetix/internal/store/jsonstore"
)

func newInventory(t *testing.T) (*inventory.Service, *repository.ScreeningRepo, *domain.Screening) {
	t.Helper()

	st := jsonstore.New(t.TempDir())
	require.NoError(t, st.Replace("screenings", []repository.ScreeningRecord{
		{
			ScreeningID: 100, MovieID: 100, ScreeningDate: "2026-09-05",
			StartTime: "18:00", EndTime: "20:00", HallName: "Hall A",
			Seats: []repository.SeatRecord{
				{RowNumber: 1, SeatNumber: 1, SeatPrice: 10},
				{RowNumber: 1, SeatNumber: 2, SeatPrice: 10},
				{RowNumber: 1, SeatNumber: 3, SeatPrice: 10},
			},
			IsActive: true,
		},
	}))

	repo := repository.NewScreeningRepo(st)
	screenings, err := repo.All(context.Background())
	require.NoError(t, err)
	require.Len(t, screenings, 1)

	return inventory.New(repo), repo, screenings[0]
}

func storedReserved(t *testing.T, repo *repository.ScreeningRepo, seatID string) bool {
	t.Helper()

	screenings, err := repo.All(context.Background())
	require.NoError(t, err)
	seat := screenings[0].SeatByID(seatID)
	require.NotNil(t, seat)
	return seat.Reserved
}

func TestReserveAndRelease(t *testing.T) {
	svc, repo, screening := newInventory(t)
	ctx := context.Background()

	ok, err := svc.IsAvailable(screening, []string{"11", "12"})
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.Reserve(ctx, screening, []string{"11", "12"}))
	assert.True(t, screening.SeatByID("11").Reserved)
	assert.True(t, storedReserved(t, repo, "11"))
	assert.True(t, storedReserved(t, repo, "12"))
	assert.False(t, storedReserved(t, repo, "13"))

	ok, err = svc.IsAvailable(screening, []string{"11"})
	require.NoError(t, err)
	assert.False(t, ok)

	// Re-reserving is a no-op, not an error.
	require.NoError(t, svc.Reserve(ctx, screening, []string{"11", "12"}))

	require.NoError(t, svc.Release(ctx, screening, []string{"11", "12"}))
	assert.False(t, screening.SeatByID("11").Reserved)
	assert.False(t, storedReserved(t, repo, "11"))

	// Releasing a free seat is equally harmless.
	require.NoError(t, svc.Release(ctx, screening, []string{"11"}))
}

func TestUnknownSeat(t *testing.T) {
	svc, repo, screening := newInventory(t)
	ctx := context.Background()

	_, err := svc.IsAvailable(screening, []string{"99"})
	assert.ErrorIs(t, err, inventory.ErrSeatNotFound)

	var snf inventory.SeatNotFoundError
	require.ErrorAs(t, err, &snf)
	assert.Equal(t, "99", snf.SeatID)
	assert.Equal(t, int64(100), snf.ScreeningID)

	// A reserve that trips over an unknown seat must not leave the earlier
	// seats flipped, in memory or on disk.
	err = svc.Reserve(ctx, screening, []string{"11", "99"})
	assert.ErrorIs(t, err, inventory.ErrSeatNotFound)
	assert.False(t, screening.SeatByID("11").Reserved)
	assert.False(t, storedReserved(t, repo, "11"))
}
