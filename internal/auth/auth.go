// Package auth manages survey author accounts: signup with an email
// verification code, bcrypt passwords and HS256 bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/nashtech/odmat/internal/store"
)

// Roles granted at signup.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

const (
	maxEmailLen    = 50
	minPasswordLen = 6
	maxPasswordLen = 40

	// DefaultTTL is the lifetime of an issued token.
	DefaultTTL = 24 * time.Hour
)

var (
	ErrEmailInUse         = errors.New("email is already in use")
	ErrInvalidCode        = errors.New("invalid verification code")
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("account is not verified")
	ErrInvalidToken       = errors.New("invalid token")
)

// InvalidInputError reports a rejected signup field.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// SignupRequest is the payload of a new account.
type SignupRequest struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Role     []string `json:"role,omitempty"`
}

// Token is returned by Signin.
type Token struct {
	Token string   `json:"token"`
	Type  string   `json:"type"`
	ID    int64    `json:"id"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// Claims are the JWT claims of an issued token. Subject holds the user id.
type Claims struct {
	jwt.RegisteredClaims

	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// UserID parses the subject claim.
func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// Service implements signup, verification and signin.
type Service struct {
	users  store.UserRepo
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	log    *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithTTL sets the token lifetime.
func WithTTL(d time.Duration) Option {
	return func(s *Service) { s.ttl = d }
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock overrides time.Now for token issue and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service that signs tokens with secret.
func NewService(users store.UserRepo, secret []byte, opts ...Option) (*Service, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: signing secret is required")
	}
	s := &Service{users: users, secret: secret, ttl: DefaultTTL, now: time.Now, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Signup creates a disabled account and returns its verification code.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (string, error) {
	email := strings.TrimSpace(req.Email)
	if err := validateSignup(email, req.Password); err != nil {
		return "", err
	}
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if exists {
		return "", ErrEmailInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	code := uuid.NewString()
	rec := &store.UserRecord{
		Email:            email,
		PasswordHash:     string(hash),
		Roles:            grantRoles(req.Role),
		Enabled:          false,
		VerificationCode: code,
	}
	if err := s.users.Create(ctx, rec); err != nil {
		return "", err
	}
	s.log.Info("user registered", zap.Int64("id", rec.ID), zap.Strings("roles", rec.Roles))
	return code, nil
}

// Verify enables the account when code matches and clears the code.
func (s *Service) Verify(ctx context.Context, email, code string) error {
	rec, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if rec.VerificationCode == "" || rec.VerificationCode != code {
		return ErrInvalidCode
	}
	rec.Enabled = true
	rec.VerificationCode = ""
	if err := s.users.Update(ctx, rec); err != nil {
		return err
	}
	s.log.Info("user verified", zap.Int64("id", rec.ID))
	return nil
}

// Signin checks the password of a verified account and issues a token.
func (s *Service) Signin(ctx context.Context, email, password string) (*Token, error) {
	rec, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !rec.Enabled {
		return nil, ErrNotVerified
	}

	signed, err := s.issue(rec)
	if err != nil {
		return nil, err
	}
	return &Token{Token: signed, Type: "Bearer", ID: rec.ID, Email: rec.Email, Roles: rec.Roles}, nil
}

func (s *Service) issue(rec *store.UserRecord) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(rec.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Email: rec.Email,
		Roles: rec.Roles,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies the signature, algorithm and expiry of token.
func (s *Service) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if _, err := claims.UserID(); err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return claims, nil
}

func grantRoles(requested []string) []string {
	if len(requested) == 0 {
		return []string{RoleUser}
	}
	seen := map[string]bool{}
	var roles []string
	for _, r := range requested {
		role := RoleUser
		if r == "admin" {
			role = RoleAdmin
		}
		if !seen[role] {
			seen[role] = true
			roles = append(roles, role)
		}
	}
	return roles
}

func validateSignup(email, password string) error {
	switch {
	case email == "":
		return &InvalidInputError{Field: "email", Reason: "is required"}
	case len(email) > maxEmailLen:
		return &InvalidInputError{Field: "email", Reason: fmt.Sprintf("must be at most %d characters", maxEmailLen)}
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return &InvalidInputError{Field: "email", Reason: "is not a valid address"}
	}
	if n := len(password); n < minPasswordLen || n > maxPasswordLen {
		return &InvalidInputError{Field: "password", Reason: fmt.Sprintf("must be %d to %d characters", minPasswordLen, maxPasswordLen)}
	}
	return nil
}
