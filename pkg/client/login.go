package client

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"

	"github.com/naveenspark/consultly/pkg/domain"
)

var (
	// ErrNoToken is returned when a login response carries no usable token.
	ErrNoToken = errors.New("login response has no token")
	// ErrNoUser is returned when no user id can be read from the response or
	// the token's claims. Bookings need one.
	ErrNoUser = errors.New("no user id in login response or token")
)

// loginResult is the tolerant decode target for /auth/login. Backends in the
// wild name the token token, accessToken or jwt, and the user id id or _id.
type loginResult struct {
	Token       string     `json:"token"`
	AccessToken string     `json:"accessToken"`
	JWT         string     `json:"jwt"`
	User        *loginUser `json:"user"`
}

type loginUser struct {
	ID       string `json:"id"`
	MongoID  string `json:"_id"`
	Name     string `json:"name"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

func (r loginResult) token() string {
	for _, t := range []string{r.Token, r.AccessToken, r.JWT} {
		if t != "" {
			return t
		}
	}
	return ""
}

func (r loginResult) session() (*domain.Session, error) {
	tok := r.token()
	if tok == "" {
		return nil, ErrNoToken
	}
	sess := &domain.Session{Token: tok}
	if r.User != nil {
		sess.User = domain.User{
			ID:    firstNonEmpty(r.User.ID, r.User.MongoID),
			Name:  firstNonEmpty(r.User.Name, r.User.FullName),
			Email: r.User.Email,
		}
	}
	if sess.User.ID == "" || sess.User.Email == "" || sess.User.Name == "" {
		fillFromClaims(&sess.User, tok)
	}
	if sess.User.ID == "" {
		return nil, ErrNoUser
	}
	return sess, nil
}

// fillFromClaims fills missing profile fields from the token's claims. The
// signature is not verified: the backend is the authority, this only reads
// what it already told us.
func fillFromClaims(u *domain.User, tok string) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return
	}
	str := func(keys ...string) string {
		for _, k := range keys {
			switch v := claims[k].(type) {
			case string:
				if v != "" {
					return v
				}
			case float64:
				return fmt.Sprintf("%.0f", v)
			}
		}
		return ""
	}
	if u.ID == "" {
		u.ID = str("sub", "id", "userId", "_id")
	}
	if u.Email == "" {
		u.Email = str("email")
	}
	if u.Name == "" {
		u.Name = str("name")
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// SessionFromToken builds a session for a token obtained outside the login
// flow, reading the profile from its claims. Tokens without a user id claim
// are rejected with ErrNoUser.
func SessionFromToken(tok string) (domain.Session, error) {
	if tok == "" {
		return domain.Session{}, ErrNoToken
	}
	sess := domain.Session{Token: tok}
	fillFromClaims(&sess.User, tok)
	if sess.User.ID == "" {
		return domain.Session{}, ErrNoUser
	}
	return sess, nil
}
