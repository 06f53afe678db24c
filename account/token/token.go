package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

const resetScope = "password_reset"

type sessionClaims struct {
	jwt.StandardClaims
	Name string `json:"name,omitempty"`
	// Scope stays empty on session tokens. Parsing it here lets
	// VerifySession reject reset tokens.
	Scope string `json:"scope,omitempty"`
}

type resetClaims struct {
	jwt.StandardClaims
	Scope string `json:"scope"`
}

// Claims is the verified content of a session token.
type Claims struct {
	Email string
	Name  string
}

type Issuer struct {
	signingKey []byte
	sessionTTL time.Duration
	resetTTL   time.Duration
}

func NewIssuer(signingKey string, sessionTTL, resetTTL time.Duration) *Issuer {
	return &Issuer{
		signingKey: []byte(signingKey),
		sessionTTL: sessionTTL,
		resetTTL:   resetTTL,
	}
}

// SignSession issues a session token asserting the caller's identity.
func (i *Issuer) SignSession(email, name string) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		StandardClaims: jwt.StandardClaims{
			Subject:   email,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(i.sessionTTL).Unix(),
		},
		Name: name,
	})
	return t.SignedString(i.signingKey)
}

// VerifySession validates a session token and returns its claims.
func (i *Issuer) VerifySession(raw string) (Claims, error) {
	claims := sessionClaims{}
	t, err := jwt.ParseWithClaims(raw, &claims, i.keyFunc)
	if err != nil {
		return Claims{}, classify(err)
	}
	if !t.Valid || claims.Subject == "" || claims.Scope != "" {
		return Claims{}, ErrInvalidToken
	}
	return Claims{Email: claims.Subject, Name: claims.Name}, nil
}

// SignReset issues a short-lived token bound to one email address. It
// carries a scope claim so a session token can never be replayed against
// the reset endpoint.
func (i *Issuer) SignReset(email string) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, resetClaims{
		StandardClaims: jwt.StandardClaims{
			Subject:   email,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(i.resetTTL).Unix(),
		},
		Scope: resetScope,
	})
	return t.SignedString(i.signingKey)
}

// VerifyReset validates a reset token and returns the bound email.
func (i *Issuer) VerifyReset(raw string) (string, error) {
	claims := resetClaims{}
	t, err := jwt.ParseWithClaims(raw, &claims, i.keyFunc)
	if err != nil {
		return "", classify(err)
	}
	if !t.Valid || claims.Scope != resetScope || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func (i *Issuer) keyFunc(t *jwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, ErrInvalidToken
	}
	return i.signingKey, nil
}

func classify(err error) error {
	var ve *jwt.ValidationError
	if ok := errors.As(err, &ve); !ok {
		return err
	}
	if ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
		return ErrTokenExpired
	}
	return ErrInvalidToken
}
