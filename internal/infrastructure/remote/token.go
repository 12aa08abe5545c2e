package remote

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errInvalidToken = errors.New("invalid session token")

// sessionClaims is what the persisted token carries.
type sessionClaims struct {
	SessionID string
	UserID    string
	ExpiresAt time.Time
}

type tokenSigner struct {
	secret []byte
}

func (t tokenSigner) sign(c sessionClaims) (string, error) {
	claims := jwt.MapClaims{
		"sid": c.SessionID,
		"sub": c.UserID,
		"exp": c.ExpiresAt.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// parse verifies signature and expiry. With verify false only the payload is
// decoded, which is enough to revoke a session on logout.
func (t tokenSigner) parse(raw string, verify bool) (sessionClaims, error) {
	claims := jwt.MapClaims{}
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return t.secret, nil
	}

	if verify {
		tkn, err := jwt.ParseWithClaims(raw, claims, keyFunc)
		if err != nil || !tkn.Valid {
			return sessionClaims{}, errInvalidToken
		}
	} else if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return sessionClaims{}, errInvalidToken
	}

	sid, _ := claims["sid"].(string)
	sub, _ := claims["sub"].(string)
	if sid == "" || sub == "" {
		return sessionClaims{}, errInvalidToken
	}
	out := sessionClaims{SessionID: sid, UserID: sub}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
