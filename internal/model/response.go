package model

// AuthResponse is returned by register and login. The token is a signed JWT
// bound to the user id; clients present it as `Authorization: Bearer <token>`.
type AuthResponse struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}

// ErrorResponse is the wire shape of every failure body.
type ErrorResponse struct {
	Error string `json:"error"`
}
