package canvas

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Moderation tracks admin identities, who is currently authenticated, and
// ban state. Credentials are bcrypt hashes fixed at construction; everything
// else mutates only inside the reactor loop.
//
// Admin privilege is keyed by username, not by session: logging in from any
// session grants the privilege to that name globally until logout or
// disconnect. This mirrors the product's intended behavior.
type Moderation struct {
	credentials map[string][]byte   // admin username -> bcrypt hash
	loggedIn    map[string]struct{} // currently authenticated admin usernames
	bannedUsers map[string]struct{}
	bannedAddrs map[string]struct{}
	addresses   map[string]string // username -> last-known origin address
}

// NewModeration hashes the supplied admin secrets and returns an empty
// moderation state.
func NewModeration(admins map[string]string) *Moderation {
	creds := make(map[string][]byte, len(admins))
	for name, secret := range admins {
		hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
		if err != nil {
			continue
		}
		creds[name] = hash
	}
	return &Moderation{
		credentials: creds,
		loggedIn:    make(map[string]struct{}),
		bannedUsers: make(map[string]struct{}),
		bannedAddrs: make(map[string]struct{}),
		addresses:   make(map[string]string),
	}
}

// IsRegisteredAdmin reports whether username has a stored credential.
func (m *Moderation) IsRegisteredAdmin(username string) bool {
	_, ok := m.credentials[username]
	return ok
}

// VerifySecret checks a login attempt against the stored credential. The
// credentials map never mutates after construction, so this is safe to call
// from outside the reactor (the HTTP admin API does).
func (m *Moderation) VerifySecret(username, secret string) error {
	hash, ok := m.credentials[username]
	if !ok {
		return ErrNotRegistered
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(secret)) != nil {
		return ErrBadSecret
	}
	return nil
}

// Login authenticates an admin username.
func (m *Moderation) Login(username, secret string) error {
	if err := m.VerifySecret(username, secret); err != nil {
		return err
	}
	m.loggedIn[username] = struct{}{}
	return nil
}

// Logout revokes authentication for username. Idempotent.
func (m *Moderation) Logout(username string) {
	delete(m.loggedIn, username)
}

// IsAdmin reports whether username is currently authenticated.
func (m *Moderation) IsAdmin(username string) bool {
	_, ok := m.loggedIn[username]
	return ok
}

// RequireAdmin fails with ErrNotAdmin unless username is authenticated.
func (m *Moderation) RequireAdmin(username string) error {
	if !m.IsAdmin(username) {
		return ErrNotAdmin
	}
	return nil
}

// CheckJoin refuses joins by banned usernames or banned origin addresses.
func (m *Moderation) CheckJoin(username, addr string) error {
	if m.IsBanned(username, addr) {
		return ErrBanned
	}
	return nil
}

// RecordAddress remembers the origin address a username last joined from.
func (m *Moderation) RecordAddress(username, addr string) {
	if addr != "" {
		m.addresses[username] = addr
	}
}

// AddressOf returns the last-known origin address for username, or "".
func (m *Moderation) AddressOf(username string) string {
	return m.addresses[username]
}

// Ban denies future joins for target by username and, when a last-known
// address exists, by that address too. The recorded address is purged.
// Returns the banned address or "".
func (m *Moderation) Ban(target string) string {
	m.bannedUsers[target] = struct{}{}
	addr := m.addresses[target]
	if addr != "" {
		m.bannedAddrs[addr] = struct{}{}
	}
	delete(m.addresses, target)
	return addr
}

// IsBanned reports whether a join by username from addr must be refused.
func (m *Moderation) IsBanned(username, addr string) bool {
	if _, ok := m.bannedUsers[username]; ok {
		return true
	}
	if addr == "" {
		return false
	}
	_, ok := m.bannedAddrs[addr]
	return ok
}

// Sanitize strips characters outside alphanumerics, whitespace, and the
// command punctuation set before command parsing, so malformed target names
// and markup cannot be injected.
func Sanitize(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '\t', r == '\n':
			return r
		case r == '/', r == '<', r == '>':
			return r
		}
		return -1
	}, text)
}
