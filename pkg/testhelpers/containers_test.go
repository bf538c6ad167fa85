//go:build integration

package testhelpers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestDB_MigrationsApplied(t *testing.T) {
	testDB := GetTestDB(t)

	var tableCount int
	err := testDB.DB.QueryRow(context.Background(), `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name LIKE 'dpdp_%'`).Scan(&tableCount)
	require.NoError(t, err)
	assert.Equal(t, 5, tableCount)
}

func TestTestDB_Reset(t *testing.T) {
	testDB := GetTestDB(t)
	ctx := context.Background()

	_, err := testDB.DB.Exec(ctx, `
		INSERT INTO dpdp_penalty_categories (category_name, penalty_amount)
		VALUES ('reset_probe', 1)`)
	require.NoError(t, err)

	testDB.Reset(t)

	var n int
	require.NoError(t, testDB.DB.QueryRow(ctx, "SELECT COUNT(*) FROM dpdp_penalty_categories").Scan(&n))
	assert.Zero(t, n)
}
