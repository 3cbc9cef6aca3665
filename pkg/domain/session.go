package domain

// User is the minimal profile kept alongside the bearer token.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is the client-held proof of authentication.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Valid reports whether the session carries a bearer token.
func (s Session) Valid() bool {
	return s.Token != ""
}
