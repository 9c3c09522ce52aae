package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/cozy-cafe/internal/ordering/journal"
)

func openTemp(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSaveAndHistory(t *testing.T) {
	ctx := context.Background()
	repo := openTemp(t)

	submitted := journal.NewEntry(ctx, journal.KindOrderSubmitted)
	submitted.OrderID = 1700000000000
	submitted.Status = "pending"
	submitted.Payload = `{"id":1700000000000}`
	require.NoError(t, repo.Save(ctx, submitted))

	stock := journal.NewEntry(ctx, journal.KindStockAdjusted)
	stock.MenuItemID = 3
	stock.Delta = -1
	require.NoError(t, repo.Save(ctx, stock))

	advanced := journal.NewEntry(ctx, journal.KindOrderAdvanced)
	advanced.OrderID = 1700000000000
	advanced.Status = "received"
	require.NoError(t, repo.Save(ctx, advanced))

	history, err := repo.History(ctx, 1700000000000)
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, submitted.ID, history[0].ID)
	assert.Equal(t, journal.KindOrderSubmitted, history[0].Kind)
	assert.Equal(t, `{"id":1700000000000}`, history[0].Payload)
	assert.WithinDuration(t, submitted.RecordedAt, history[0].RecordedAt, time.Millisecond)

	assert.Equal(t, journal.KindOrderAdvanced, history[1].Kind)
	assert.Equal(t, "received", history[1].Status)
	assert.Empty(t, history[1].Payload)
}

func TestHistory_UnknownOrder(t *testing.T) {
	repo := openTemp(t)

	history, err := repo.History(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSave_DuplicateID(t *testing.T) {
	ctx := context.Background()
	repo := openTemp(t)

	e := journal.NewEntry(ctx, journal.KindStockAdjusted)
	require.NoError(t, repo.Save(ctx, e))
	assert.Error(t, repo.Save(ctx, e))
}

func TestOpen_ReopensExistingFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	repo, err := Open(path)
	require.NoError(t, err)
	e := journal.NewEntry(ctx, journal.KindOrderSubmitted)
	e.OrderID = 5
	require.NoError(t, repo.Save(ctx, e))
	require.NoError(t, repo.Close())

	repo, err = Open(path)
	require.NoError(t, err)
	defer repo.Close()

	history, err := repo.History(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
