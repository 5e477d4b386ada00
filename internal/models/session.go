package models

import "time"

// TokenPair is the access/refresh pair issued by the platform after a
// successful code exchange. The tokens are opaque to this layer.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Session is the server-held login state, keyed by the session id stored in
// the browser cookie. Set on login success, cleared on logout or on a 401
// from the profile endpoint.
type Session struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	CreatedAt    time.Time `json:"created_at"`
}
