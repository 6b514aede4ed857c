package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/testutil"
)

func TestNewMySQLCartRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLCartRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

// Integration Tests

func inTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx)) {
	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	fn(tx)
	require.NoError(t, tx.Commit())
}

func TestCartRepository_AddQuantityMergesLine(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLCartRepository(db)
	ctx := context.Background()
	user := testutil.InsertUser(t, db, "Jane", "jane@example.com")
	product := testutil.InsertProduct(t, db, "Basin", "100.00", 10, true)

	inTx(t, db, func(tx *sql.Tx) {
		require.NoError(t, repo.AddQuantity(ctx, tx, user, product, 2))
		require.NoError(t, repo.AddQuantity(ctx, tx, user, product, 3))
	})

	lines, err := repo.FindByUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, "Basin", lines[0].ProductName)
	assert.Equal(t, "100.00", lines[0].UnitPrice.StringFixed(2))
	assert.True(t, lines[0].ProductActive)
}

func TestCartRepository_SetQuantityReplaces(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLCartRepository(db)
	ctx := context.Background()
	user := testutil.InsertUser(t, db, "Jane", "jane@example.com")
	product := testutil.InsertProduct(t, db, "Basin", "100.00", 10, true)

	inTx(t, db, func(tx *sql.Tx) {
		require.NoError(t, repo.AddQuantity(ctx, tx, user, product, 4))
		require.NoError(t, repo.SetQuantity(ctx, tx, user, product, 1))
	})

	lines, err := repo.FindByUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)
}

func TestCartRepository_DeleteAndExists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLCartRepository(db)
	ctx := context.Background()
	user := testutil.InsertUser(t, db, "Jane", "jane@example.com")
	a := testutil.InsertProduct(t, db, "A", "1.00", 10, true)
	b := testutil.InsertProduct(t, db, "B", "1.00", 10, true)

	inTx(t, db, func(tx *sql.Tx) {
		require.NoError(t, repo.AddQuantity(ctx, tx, user, a, 1))
		require.NoError(t, repo.AddQuantity(ctx, tx, user, b, 1))
	})

	exists, err := repo.Exists(ctx, user, a)
	require.NoError(t, err)
	assert.True(t, exists)

	inTx(t, db, func(tx *sql.Tx) {
		deleted, err := repo.Delete(ctx, tx, user, a)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.Delete(ctx, tx, user, a)
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	exists, err = repo.Exists(ctx, user, a)
	require.NoError(t, err)
	assert.False(t, exists)

	inTx(t, db, func(tx *sql.Tx) {
		n, err := repo.DeleteAll(ctx, tx, user)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	lines, err := repo.FindByUser(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCartRepository_FindByUserForUpdateLeavesProductsUnlocked(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLCartRepository(db)
	ctx := context.Background()
	user := testutil.InsertUser(t, db, "Jane", "jane@example.com")
	product := testutil.InsertProduct(t, db, "Basin", "100.00", 10, true)
	inTx(t, db, func(tx *sql.Tx) {
		require.NoError(t, repo.AddQuantity(ctx, tx, user, product, 2))
	})

	locker, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer locker.Rollback()
	lines, err := repo.FindByUserForUpdate(ctx, locker, user)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	second, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer second.Rollback()

	var stock int
	err = second.QueryRowContext(ctx, `SELECT stock_quantity FROM products WHERE id = ? FOR UPDATE NOWAIT`, product).Scan(&stock)
	require.NoError(t, err, "product row must not be locked by a cart read")
	assert.Equal(t, 10, stock)
}
