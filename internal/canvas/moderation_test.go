package canvas

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestModeration() *Moderation {
	return NewModeration(map[string]string{"yekta": "yekta2013"})
}

func TestLoginVerifiesSecret(t *testing.T) {
	mod := newTestModeration()

	require.ErrorIs(t, mod.Login("yekta", "wrong"), ErrBadSecret)
	require.False(t, mod.IsAdmin("yekta"))

	require.ErrorIs(t, mod.Login("alice", "whatever"), ErrNotRegistered)

	require.NoError(t, mod.Login("yekta", "yekta2013"))
	require.True(t, mod.IsAdmin("yekta"))
}

func TestLoginLogoutRoundTrip(t *testing.T) {
	mod := newTestModeration()

	require.NoError(t, mod.Login("yekta", "yekta2013"))
	mod.Logout("yekta")
	require.False(t, mod.IsAdmin("yekta"), "authenticated set must match its pre-login state")

	// Logout of a never-authenticated name is a no-op.
	mod.Logout("alice")
	require.False(t, mod.IsAdmin("alice"))
}

func TestBanByUsernameAndAddress(t *testing.T) {
	mod := newTestModeration()
	mod.RecordAddress("alice", "10.0.0.7")

	addr := mod.Ban("alice")
	require.Equal(t, "10.0.0.7", addr)

	require.True(t, mod.IsBanned("alice", ""))
	require.True(t, mod.IsBanned("someone-else", "10.0.0.7"), "address ban applies to any name")
	require.False(t, mod.IsBanned("bob", "10.0.0.8"))

	// The recorded address is purged with the ban.
	require.Empty(t, mod.AddressOf("alice"))
}

func TestBanWithoutKnownAddress(t *testing.T) {
	mod := newTestModeration()
	addr := mod.Ban("ghost")
	require.Empty(t, addr)
	require.True(t, mod.IsBanned("ghost", ""))
}

func TestBanIsIdempotent(t *testing.T) {
	mod := newTestModeration()
	mod.Ban("alice")
	mod.Ban("alice")
	require.True(t, mod.IsBanned("alice", ""))
}

func TestCheckJoinSignalsBan(t *testing.T) {
	mod := newTestModeration()
	require.NoError(t, mod.CheckJoin("alice", "10.0.0.7"))

	mod.RecordAddress("alice", "10.0.0.7")
	mod.Ban("alice")
	require.ErrorIs(t, mod.CheckJoin("alice", ""), ErrBanned)
	require.ErrorIs(t, mod.CheckJoin("bob", "10.0.0.7"), ErrBanned)
}

func TestRequireAdmin(t *testing.T) {
	mod := newTestModeration()
	require.ErrorIs(t, mod.RequireAdmin("yekta"), ErrNotAdmin)

	require.NoError(t, mod.Login("yekta", "yekta2013"))
	require.NoError(t, mod.RequireAdmin("yekta"))
}

func TestSanitizeStripsMarkup(t *testing.T) {
	require.Equal(t, "/ban alice", Sanitize("/ban alice"))
	require.Equal(t, "/ban <alice>", Sanitize("/ban <alice>"))
	require.Equal(t, "/ban alice", Sanitize("/ban al\"ic'e;"))
	require.Equal(t, "/login secret123", Sanitize("/login secret123!@#"))
}
