package seeders

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/thali/app/models"
	"github.com/shashiranjanraj/thali/pkg/auth"
	"github.com/shashiranjanraj/thali/pkg/database"
)

func TestRunAll_IsIdempotent(t *testing.T) {
	db, err := database.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.MenuItem{}))

	var out bytes.Buffer
	ctx := context.Background()
	require.NoError(t, RunAll(ctx, db, &out))
	require.NoError(t, RunAll(ctx, db, &out))
	assert.Contains(t, out.String(), "Running seeder: admin")

	var items []models.MenuItem
	require.NoError(t, db.Order("id").Find(&items).Error)
	require.Len(t, items, 6)
	assert.Equal(t, "Veg Thali", items[5].Name)
	assert.Equal(t, 300.00, items[5].Price)

	var admins []models.User
	require.NoError(t, db.Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, uint(1), admins[0].ID)
	assert.True(t, admins[0].IsAdmin)
	assert.True(t, auth.CheckPassword(admins[0].Password, "admin"))
}
