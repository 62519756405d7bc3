package main

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"absensi-server-go/auth"
	"absensi-server-go/db"
	"absensi-server-go/models"
)

func TestSeedIsIdempotent(t *testing.T) {
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	store := db.NewStore(conn, log.New(io.Discard))
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()

	require.NoError(t, seed(ctx, store, "password", store.Logger))
	first, err := store.GetUserByUsername(ctx, "walikelas")
	require.NoError(t, err)

	// A second run with another password must not touch existing accounts.
	require.NoError(t, seed(ctx, store, "other", store.Logger))
	again, err := store.GetUserByUsername(ctx, "walikelas")
	require.NoError(t, err)
	require.Equal(t, first.PasswordHash, again.PasswordHash)
	require.True(t, auth.CheckPassword("password", again.PasswordHash))

	for _, acc := range defaultAccounts {
		u, err := store.GetUserByUsername(ctx, acc.username)
		require.NoError(t, err)
		require.Equal(t, acc.role, u.Role)
	}
	parent, err := store.GetUserByUsername(ctx, "orangtua")
	require.NoError(t, err)
	require.True(t, parent.HasRole(models.RoleOrangtua))
}
