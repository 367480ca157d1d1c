package objectstore

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired download token")

type downloadClaims struct {
	Path string `json:"path"`
	jwt.RegisteredClaims
}

// Signer mints and verifies HMAC-signed download links. Links point at the
// artifact route of the API and carry the object path in the token.
type Signer struct {
	secret  []byte
	baseURL string
	now     func() time.Time
}

func NewSigner(secret string, publicBaseURL string) (*Signer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("signing secret is required")
	}
	return &Signer{
		secret:  []byte(secret),
		baseURL: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
		now:     time.Now,
	}, nil
}

func (s *Signer) Sign(objectPath string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		return "", time.Time{}, errors.New("signed url ttl must be positive")
	}
	issued := s.now().UTC()
	expires := issued.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, downloadClaims{
		Path: objectPath,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign download token: %w", err)
	}
	return s.baseURL + "/v1/artifacts?token=" + url.QueryEscape(signed), expires, nil
}

// Verify returns the object path carried by a valid, unexpired token.
func (s *Signer) Verify(token string) (string, error) {
	claims := &downloadClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || strings.TrimSpace(claims.Path) == "" {
		return "", ErrInvalidToken
	}
	return claims.Path, nil
}
