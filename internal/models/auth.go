package models

import (
	"fmt"
	"strings"
	"time"
)

// Tokens holds the JWT pair returned by a successful login.
type Tokens struct {
	IDToken     string    `json:"idToken"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// User is the authenticated account as reported by the identity provider.
type User struct {
	Email      string `json:"email"`
	GivenName  string `json:"givenName"`
	FamilyName string `json:"familyName"`
	Address    string `json:"address,omitempty"`
}

// DisplayName returns the user's full name, falling back to the email
// address when no name attributes are set.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.GivenName + " " + u.FamilyName)
	if name == "" {
		return u.Email
	}
	return name
}

// Registration carries the attributes submitted when creating an account.
type Registration struct {
	Email      string
	Password   string
	GivenName  string
	FamilyName string
	Address    string
}

// Validate checks that the registration has the required fields.
func (r Registration) Validate() error {
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		return fmt.Errorf("invalid email address")
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	if r.GivenName == "" {
		return fmt.Errorf("first name is required")
	}
	return nil
}

// Profile is the locally stored user profile, editable without any
// round trip to the identity provider.
type Profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Address   string `json:"address,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

// Preferences controls which notification channels are active and which
// species trigger alerts.
type Preferences struct {
	EmailEnabled bool     `json:"emailEnabled"`
	SMSEnabled   bool     `json:"smsEnabled"`
	Species      []string `json:"species,omitempty"`
}

// DefaultPreferences returns the preferences applied before the user has
// saved anything.
func DefaultPreferences() Preferences {
	return Preferences{EmailEnabled: true}
}
