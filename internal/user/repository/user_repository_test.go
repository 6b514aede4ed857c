package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/errors"
	"storefront/internal/testutil"
)

func TestUserRepository_FindByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLUserRepository(db)
	id := testutil.InsertUser(t, db, "Jane", "jane@example.com")

	u, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Jane", u.Name)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.Equal(t, "555-0100", u.Phone)
}

func TestUserRepository_FindByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLUserRepository(db)

	u, err := repo.FindByID(context.Background(), 999999)
	assert.Nil(t, u)
	_, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestUserRepository_FindByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLUserRepository(db)
	a := testutil.InsertUser(t, db, "A", "a@example.com")
	b := testutil.InsertUser(t, db, "B", "b@example.com")

	users, err := repo.FindByIDs(context.Background(), []int64{a, b, 999999})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "b@example.com", users[b].Email)
}
