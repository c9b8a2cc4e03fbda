package resetcodes

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/coinkeeper/internal/common"
	"github.com/dmitrijs2005/coinkeeper/internal/models"
	"github.com/dmitrijs2005/coinkeeper/internal/repositories/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupRepo(t *testing.T) *KVRepository {
	t.Helper()
	db, err := kvstore.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewKVRepository(kvstore.NewSQLiteStore(db))
}

func TestSaveGetDelete(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()

	expiry := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.Save(ctx, "alice@example.com", models.ResetCode{Code: "123456", Expiry: expiry}))

	got, err := r.Get(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "123456", got.Code)
	assert.True(t, got.Expiry.Equal(expiry))

	require.NoError(t, r.Delete(ctx, "alice@example.com"))
	_, err = r.Get(ctx, "alice@example.com")
	require.ErrorIs(t, err, common.ErrNoResetCode)
}

func TestSave_OverwritesPriorCode(t *testing.T) {
	r := setupRepo(t)
	ctx := context.Background()

	expiry := time.Now().Add(5 * time.Minute)
	require.NoError(t, r.Save(ctx, "alice@example.com", models.ResetCode{Code: "111111", Expiry: expiry}))
	require.NoError(t, r.Save(ctx, "alice@example.com", models.ResetCode{Code: "222222", Expiry: expiry}))

	got, err := r.Get(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "222222", got.Code)
}

func TestGet_None(t *testing.T) {
	r := setupRepo(t)

	_, err := r.Get(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, common.ErrNoResetCode)
}
