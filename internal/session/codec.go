package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dreveal/backoffice/internal/config"
)

// ErrInvalidSession is the only failure the codec surfaces. Decode
// errors, bad signatures, principal mismatch and expiry are deliberately
// indistinguishable so a caller cannot learn which check failed.
var ErrInvalidSession = errors.New("invalid session")

// NowFunc returns the current time. It can be overridden in tests.
var NowFunc = time.Now

// Session is the decoded state of a valid admin session token.
type Session struct {
	Username     string
	IssuedAt     time.Time
	LastActivity time.Time
	ExpiresAt    time.Time
}

type claims struct {
	LastActivity int64 `json:"lat"`
	jwt.RegisteredClaims
}

// Codec mints and validates admin session tokens. Tokens are HMAC-signed
// claims carrying their own expiry; validation never consults server-side
// state, so the session is wholly client-held.
type Codec struct {
	secret   []byte
	username string
	ttl      time.Duration
}

func NewCodec(secret, adminUsername string) *Codec {
	return &Codec{
		secret:   []byte(secret),
		username: adminUsername,
		ttl:      config.SessionTTL,
	}
}

// Create issues a token for the admin principal, valid for one TTL.
func (c *Codec) Create(username string) (string, time.Time, error) {
	now := NowFunc()
	return c.sign(username, now, now, now.Add(c.ttl))
}

// ValidateAndRefresh checks a token and, when valid, issues a replacement
// whose expiry is pushed out by one full TTL (sliding window). There is no
// cap on total session lifetime as long as each refresh lands inside the
// previous window.
func (c *Codec) ValidateAndRefresh(token string) (*Session, string, error) {
	sess, err := c.decode(token)
	if err != nil {
		return nil, "", ErrInvalidSession
	}

	now := NowFunc()
	refreshed, expiresAt, err := c.sign(sess.Username, sess.IssuedAt, now, now.Add(c.ttl))
	if err != nil {
		return nil, "", err
	}

	sess.LastActivity = now
	sess.ExpiresAt = expiresAt
	return sess, refreshed, nil
}

func (c *Codec) sign(username string, issuedAt, lastActivity, expiresAt time.Time) (string, time.Time, error) {
	cl := claims{
		LastActivity: lastActivity.Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func (c *Codec) decode(token string) (*Session, error) {
	var cl claims
	parsed, err := jwt.ParseWithClaims(token, &cl, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(NowFunc))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}

	if cl.Subject != c.username {
		return nil, ErrInvalidSession
	}
	if cl.ExpiresAt == nil || cl.IssuedAt == nil {
		return nil, ErrInvalidSession
	}

	return &Session{
		Username:     cl.Subject,
		IssuedAt:     cl.IssuedAt.Time,
		LastActivity: time.Unix(cl.LastActivity, 0),
		ExpiresAt:    cl.ExpiresAt.Time,
	}, nil
}
