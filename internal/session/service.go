package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/noah-isme/backend-kedai/internal/common"
	"github.com/noah-isme/backend-kedai/internal/obs"
)

const (
	// SubjectAdmin is the subject of every dashboard session.
	SubjectAdmin = "admin"
	// RoleAdmin grants access to the admin API.
	RoleAdmin = "admin"

	roleClaim  = "role"
	defaultTTL = 12 * time.Hour
)

var (
	// ErrInvalidCredentials is returned when the admin password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken marks a token that fails parsing or validation.
	ErrInvalidToken = errors.New("invalid session token")
)

// Session is a verified admin session.
type Session struct {
	Subject   string    `json:"subject"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Token is a signed session token and its expiry.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Config configures the session service.
type Config struct {
	Secret       string
	PasswordHash string
	TTL          time.Duration
	Issuer       string
	Audience     string
	ClockSkew    time.Duration
}

// Service verifies the admin password and issues session tokens.
type Service struct {
	secret    []byte
	hash      string
	ttl       time.Duration
	issuer    string
	audience  string
	clockSkew time.Duration
	validator TokenValidator
	now       func() time.Time
}

// NewService constructs a Service.
func NewService(cfg Config) (*Service, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("session: secret is required")
	}
	hash := strings.TrimSpace(cfg.PasswordHash)
	if _, _, _, err := argon2id.DecodeHash(hash); err != nil {
		return nil, fmt.Errorf("session: password hash: %w", err)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = "backend-kedai"
	}
	audience := strings.TrimSpace(cfg.Audience)
	if audience == "" {
		audience = "kedai-admin"
	}
	skew := cfg.ClockSkew
	if skew < 0 {
		skew = 0
	}
	return &Service{
		secret:    []byte(secret),
		hash:      hash,
		ttl:       ttl,
		issuer:    issuer,
		audience:  audience,
		clockSkew: skew,
		validator: TokenValidator{Issuer: issuer, Audience: audience, ClockSkew: skew, Algorithm: jwa.HS256},
		now:       time.Now,
	}, nil
}

// WithNow overrides the clock used for issuing and validating tokens.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Login checks the admin password and returns a signed session token.
func (s *Service) Login(_ context.Context, password string) (tok Token, err error) {
	defer func() {
		result := obs.Result(err)
		if errors.Is(err, ErrInvalidCredentials) {
			result = "invalid"
		}
		obs.IncCounter(obs.AdminLoginsTotal, result)
	}()
	if password == "" {
		return Token{}, unauthorized(ErrInvalidCredentials)
	}
	ok, err := argon2id.ComparePasswordAndHash(password, s.hash)
	if err != nil {
		return Token{}, fmt.Errorf("compare password: %w", err)
	}
	if !ok {
		return Token{}, unauthorized(ErrInvalidCredentials)
	}
	return s.sign()
}

// Parse validates a token and returns the session it carries.
func (s *Service) Parse(token string) (Session, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return Session{}, unauthorized(ErrInvalidToken)
	}
	algorithm, err := tokenAlgorithm(trimmed)
	if err != nil {
		return Session{}, unauthorized(fmt.Errorf("%w: %w", ErrInvalidToken, err))
	}
	parsed, err := jwt.ParseString(trimmed, jwt.WithKey(s.validator.Algorithm, s.secret), jwt.WithValidate(false))
	if err != nil {
		return Session{}, unauthorized(fmt.Errorf("%w: %w", ErrInvalidToken, err))
	}
	if err := s.validator.Validate(parsed, algorithm, s.now()); err != nil {
		return Session{}, unauthorized(fmt.Errorf("%w: %w", ErrInvalidToken, err))
	}
	role, _ := parsed.Get(roleClaim)
	roleName, _ := role.(string)
	if parsed.Subject() != SubjectAdmin || roleName != RoleAdmin {
		return Session{}, unauthorized(fmt.Errorf("%w: not an admin session", ErrInvalidToken))
	}
	return Session{Subject: parsed.Subject(), Role: roleName, ExpiresAt: parsed.Expiration()}, nil
}

func (s *Service) sign() (Token, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	tok, err := jwt.NewBuilder().
		Subject(SubjectAdmin).
		Issuer(s.issuer).
		Audience([]string{s.audience}).
		IssuedAt(now).
		NotBefore(now.Add(-s.clockSkew)).
		Expiration(expiresAt).
		Claim(roleClaim, RoleAdmin).
		Build()
	if err != nil {
		return Token{}, err
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, s.secret))
	if err != nil {
		return Token{}, err
	}
	return Token{Token: string(signed), ExpiresAt: expiresAt.Truncate(time.Second)}, nil
}

func unauthorized(err error) error {
	msg := "invalid session"
	if errors.Is(err, ErrInvalidCredentials) {
		msg = "invalid password"
	}
	return common.NewAppError("UNAUTHORIZED", msg, http.StatusUnauthorized, err)
}
