package database

import (
	"context"
	"path/filepath"
	"testing"

	"lager-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteSeedsAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lager.db")

	s, err := OpenSQLite(path, seedBytes(t))
	require.NoError(t, err)
	assert.Equal(t, 10, quantity(t, s))

	require.NoError(t, s.Update(context.Background(), func(doc *models.Document) error {
		doc.Articles = append(doc.Articles, models.Article{ID: "00002", Name: "Kabel", Quantity: 2, MinimumQuantity: 4})
		doc.Bookings = append(doc.Bookings, models.Booking{ArticleID: "00001", Change: 1, ResultingQuantity: 11, Type: models.BookingPurchase})
		doc.Articles[0].Quantity = 11
		return nil
	}))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	snap := reopened.Snapshot()
	require.Len(t, snap.Articles, 2)
	assert.Equal(t, 11, snap.Articles[0].Quantity)
	assert.Equal(t, "Kabel", snap.Articles[1].Name)
	require.Len(t, snap.Bookings, 1)
	assert.Equal(t, models.BookingPurchase, snap.Bookings[0].Type)
	assert.Equal(t, "admin", snap.Users[0].Username)
}

func TestSQLiteFailedUpdateWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lager.db")
	s, err := OpenSQLite(path, seedBytes(t))
	require.NoError(t, err)

	err = s.Update(context.Background(), func(doc *models.Document) error {
		doc.Articles[0].Quantity = 0
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(path, nil)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, 10, quantity(t, reopened))
}
