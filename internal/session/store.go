// Package session persists the authenticated session between CLI invocations.
//
// The hosted app keeps tokens in per-tab browser storage; here the same keys
// live in the SQLite session table so consecutive commands share a login.
package session

import (
	"encoding/json"
	"time"

	"github.com/mbb-dev/birdtag/internal/models"
	"github.com/mbb-dev/birdtag/internal/repositories"
)

const (
	keyIDToken      = "idToken"
	keyAccessToken  = "accessToken"
	keyExpiresAt    = "expiresAt"
	keyCurrentUser  = "currentUser"
	keyPendingEmail = "pendingEmail"
)

// Store reads and writes session state through a key-value repository.
//
// Read accessors deliberately swallow storage and decode errors: a corrupt
// or missing value behaves exactly like a logged-out session.
type Store struct {
	kv *repositories.KVRepository
}

// NewStore creates a session store backed by the given repository.
func NewStore(kv *repositories.KVRepository) *Store {
	return &Store{kv: kv}
}

// SetSession stores the token pair and the current user, replacing any
// previous session. A pending signup marker is cleared since the account
// is evidently confirmed.
func (s *Store) SetSession(tokens models.Tokens, user models.User) error {
	if err := s.kv.Set(keyIDToken, tokens.IDToken); err != nil {
		return err
	}
	if err := s.kv.Set(keyAccessToken, tokens.AccessToken); err != nil {
		return err
	}
	if !tokens.ExpiresAt.IsZero() {
		if err := s.kv.Set(keyExpiresAt, tokens.ExpiresAt.Format(time.RFC3339)); err != nil {
			return err
		}
	}

	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.kv.Set(keyCurrentUser, string(data)); err != nil {
		return err
	}

	return s.kv.Delete(keyPendingEmail)
}

// Token returns the stored ID token, or "" when logged out.
func (s *Store) Token() string {
	value, _, _ := s.kv.Get(keyIDToken)
	return value
}

// AccessToken returns the stored access token, or "" when logged out.
func (s *Store) AccessToken() string {
	value, _, _ := s.kv.Get(keyAccessToken)
	return value
}

// ExpiresAt returns the stored token expiry, or the zero time when unknown.
func (s *Store) ExpiresAt() time.Time {
	value, ok, _ := s.kv.Get(keyExpiresAt)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// User returns the stored account details, or nil when logged out or when
// the stored value cannot be decoded.
func (s *Store) User() *models.User {
	value, ok, _ := s.kv.Get(keyCurrentUser)
	if !ok {
		return nil
	}
	var user models.User
	if err := json.Unmarshal([]byte(value), &user); err != nil {
		return nil
	}
	return &user
}

// Clear removes all session state, including any pending signup marker.
func (s *Store) Clear() error {
	return s.kv.DeleteAll()
}

// SetPendingEmail records the address of a signup awaiting confirmation.
func (s *Store) SetPendingEmail(email string) error {
	return s.kv.Set(keyPendingEmail, email)
}

// PendingEmail returns the address of an unconfirmed signup, or "".
func (s *Store) PendingEmail() string {
	value, _, _ := s.kv.Get(keyPendingEmail)
	return value
}

// ClearPendingEmail removes the pending signup marker.
func (s *Store) ClearPendingEmail() error {
	return s.kv.Delete(keyPendingEmail)
}
