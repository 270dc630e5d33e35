package domain

import "time"

// Profile holds the account fields the API returns for an authenticated user.
type Profile struct {
	ID                   string   `json:"id"`
	Username             string   `json:"username"`
	Email                string   `json:"email"`
	ProfileImageURL      string   `json:"profileImageUrl,omitempty"`
	FavoriteDrivers      []string `json:"favoriteDrivers"`
	FavoriteConstructors []string `json:"favoriteConstructors"`
	HasPremium           bool     `json:"hasPremium,omitempty"`
}

// AuthResponse is the flat login/register payload: profile fields plus the
// bearer token.
type AuthResponse struct {
	Profile
	Token string `json:"token"`
}

// NewUser is the registration payload.
type NewUser struct {
	Username             string   `json:"username"`
	Email                string   `json:"email"`
	Password             string   `json:"password"`
	ProfileImageURL      string   `json:"profileImageUrl,omitempty"`
	FavoriteDrivers      []string `json:"favoriteDrivers"`
	FavoriteConstructors []string `json:"favoriteConstructors"`
}

// UpdatedUser is the profile shape returned by the user-update endpoint.
// The API nests it under "user" and uses a Mongo-style "_id" field.
type UpdatedUser struct {
	ID                   string   `json:"_id"`
	Username             string   `json:"username"`
	Email                string   `json:"email"`
	ProfileImageURL      string   `json:"profileImageUrl,omitempty"`
	FavoriteDrivers      []string `json:"favoriteDrivers"`
	FavoriteConstructors []string `json:"favoriteConstructors"`
	HasPremium           bool     `json:"hasPremium,omitempty"`
}

// Session is an authenticated session: the bearer token, when it was issued,
// which expiry policy applies, and the profile it belongs to.
type Session struct {
	Token      string
	IssuedAt   time.Time
	RememberMe bool
	Profile    Profile
}

// SessionTTL returns how long a session stays valid under the given
// remember-me setting: 24 hours by default, 60 days with remember-me.
func SessionTTL(rememberMe bool) time.Duration {
	if rememberMe {
		return 60 * 24 * time.Hour
	}
	return 24 * time.Hour
}

// Expired reports whether a session issued at the given time is past its
// window at now.
func Expired(issuedAt time.Time, rememberMe bool, now time.Time) bool {
	return now.After(issuedAt.Add(SessionTTL(rememberMe)))
}
