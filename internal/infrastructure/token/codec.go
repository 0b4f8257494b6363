package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidSignature indicates the token signature does not verify
	// under the configured secret.
	ErrInvalidSignature = errors.New("token signature invalid")
	// ErrExpired indicates the token expiry claim is in the past.
	ErrExpired = errors.New("token expired")
	// ErrMalformed indicates the token cannot be parsed at all.
	ErrMalformed = errors.New("token malformed")
)

// DefaultTTL bounds token lifetime when no explicit TTL is configured.
const DefaultTTL = 30 * time.Minute

// Codec signs and verifies self-contained HS256 tokens. The secret must be
// provisioned identically in every service that verifies tokens; there is no
// key exchange and no server-side token registry.
type Codec struct {
	secret  []byte
	ttl     time.Duration
	nowFunc func() time.Time
}

// NewCodec constructs a codec around the shared secret. A zero ttl falls
// back to DefaultTTL.
func NewCodec(secret string, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Codec{
		secret:  []byte(secret),
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

// Encode signs the provided claims, adding an expiry of now plus the
// configured TTL. The input map is not modified.
func (c *Codec) Encode(claims map[string]any) (string, error) {
	if len(c.secret) == 0 {
		return "", errors.New("signing secret is empty")
	}

	merged := make(jwt.MapClaims, len(claims)+1)
	for k, v := range claims {
		merged[k] = v
	}
	merged["exp"] = jwt.NewNumericDate(c.nowFunc().UTC().Add(c.ttl))

	return jwt.NewWithClaims(jwt.SigningMethodHS256, merged).SignedString(c.secret)
}

// Decode verifies the signature and expiry and returns the full claim map.
// It makes no judgement about which claims are present; callers decide what
// they require.
func (c *Codec) Decode(tokenString string) (map[string]any, error) {
	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return c.nowFunc() }))
	if err != nil {
		return nil, mapJWTError(err)
	}
	if !tok.Valid {
		return nil, ErrMalformed
	}
	return claims, nil
}

// mapJWTError translates jwt library errors into the codec's taxonomy.
func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	default:
		return ErrMalformed
	}
}
