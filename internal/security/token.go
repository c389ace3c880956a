package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"cinema-api/internal/model"
)

const TokenTypeBearer = "Bearer"

// minSecretLen matches the HS256 output size.
const minSecretLen = 32

// SessionClaims are the identity facts copied into a token at issuance.
type SessionClaims struct {
	UserID string
	Email  string
	Role   string
}

type Token struct {
	AccessToken string
	ExpiresIn   int64
	TokenType   string
	ValidFrom   time.Time
	ValidTo     time.Time
}

type sessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens with a process-wide key.
type TokenIssuer struct {
	secret   []byte
	issuer   string
	audience string
	lifetime time.Duration
}

func NewTokenIssuer(secret string, issuer string, audience string, lifetime time.Duration) (*TokenIssuer, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("signing secret must be at least %d bytes", minSecretLen)
	}
	if lifetime <= 0 {
		return nil, errors.New("token lifetime must be positive")
	}

	return &TokenIssuer{
		secret:   []byte(secret),
		issuer:   strings.TrimSpace(issuer),
		audience: strings.TrimSpace(audience),
		lifetime: lifetime,
	}, nil
}

// Issue signs claims valid from now until now+lifetime. Timestamps are
// truncated to whole seconds, the resolution of the encoded token, so the
// token may expire up to a second before now+lifetime but never after it.
func (i *TokenIssuer) Issue(claims SessionClaims, now time.Time) (Token, error) {
	issuedAt := now.UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(i.lifetime)

	registered := jwt.RegisteredClaims{
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		NotBefore: jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}
	if i.issuer != "" {
		registered.Issuer = i.issuer
	}
	if i.audience != "" {
		registered.Audience = jwt.ClaimStrings{i.audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Email:            claims.Email,
		Role:             claims.Role,
		RegisteredClaims: registered,
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}

	return Token{
		AccessToken: signed,
		ExpiresIn:   int64(i.lifetime.Seconds()),
		TokenType:   TokenTypeBearer,
		ValidFrom:   issuedAt,
		ValidTo:     expiresAt,
	}, nil
}

// Verify checks the signature and time window of raw as of now. It returns
// model.ErrTokenExpired only for an authentic token past its expiry; every
// other failure is model.ErrInvalidToken.
func (i *TokenIssuer) Verify(raw string, now time.Time) (model.Principal, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
	}
	if i.issuer != "" {
		options = append(options, jwt.WithIssuer(i.issuer))
	}
	if i.audience != "" {
		options = append(options, jwt.WithAudience(i.audience))
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, options...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.Principal{}, model.ErrTokenExpired
		}
		return model.Principal{}, model.ErrInvalidToken
	}
	if !parsed.Valid || claims.Subject == "" || claims.Email == "" || claims.Role == "" {
		return model.Principal{}, model.ErrInvalidToken
	}

	principal := model.Principal{
		UserID:    claims.Subject,
		Email:     claims.Email,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		principal.IssuedAt = claims.IssuedAt.Time
	}

	return principal, nil
}
