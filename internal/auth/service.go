package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/noah-isme/backend-agency/internal/common"
	"github.com/noah-isme/backend-agency/internal/staff"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 30 * 24 * time.Hour

	rolesClaim = "roles"
)

// StaffDirectory is the subset of staff persistence the auth service needs.
type StaffDirectory interface {
	GetByEmail(ctx context.Context, email string) (staff.Staff, error)
	GetByID(ctx context.Context, id uuid.UUID) (staff.Staff, error)
}

// Session is a persisted refresh-token session for a staff account.
type Session struct {
	ID        uuid.UUID
	StaffID   uuid.UUID
	TokenHash string
	UserAgent string
	IP        string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// SessionStore persists refresh-token sessions.
type SessionStore interface {
	Create(ctx context.Context, staffID uuid.UUID, tokenHash, userAgent, ip string, expiresAt time.Time) (Session, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (Session, error)
	Rotate(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteByStaff(ctx context.Context, staffID uuid.UUID) error
}

// Service coordinates staff authentication and session persistence.
type Service struct {
	staff      StaffDirectory
	sessions   SessionStore
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	signer     jwa.SignatureAlgorithm
	validator  TokenValidator
	issuer     string
	audience   string
	clockSkew  time.Duration
}

// Config configures the auth service.
type Config struct {
	Staff           StaffDirectory
	Sessions        SessionStore
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Issuer          string
	Audience        string
	ClockSkew       time.Duration
}

// LoginResult bundles token material returned after a successful login.
type LoginResult struct {
	Staff         staff.Staff `json:"staff"`
	AccessToken   string      `json:"access_token"`
	RefreshToken  string      `json:"refresh_token"`
	AccessExpiry  time.Time   `json:"access_expires_at"`
	RefreshExpiry time.Time   `json:"refresh_expires_at"`
}

// RefreshResult represents the outcome of a refresh operation.
type RefreshResult struct {
	AccessToken   string    `json:"access_token"`
	AccessExpiry  time.Time `json:"access_expires_at"`
	RefreshToken  string    `json:"refresh_token"`
	RefreshExpiry time.Time `json:"refresh_expires_at"`
}

// NewService constructs a Service instance with sane defaults.
func NewService(cfg Config) (*Service, error) {
	if cfg.Staff == nil {
		return nil, errors.New("auth: staff directory is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("auth: session store is required")
	}
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("auth: secret is required")
	}
	accessTTL := cfg.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	refreshTTL := cfg.RefreshTokenTTL
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}

	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = "backend-agency"
	}
	audience := strings.TrimSpace(cfg.Audience)
	if audience == "" {
		audience = "agency-backoffice"
	}
	clockSkew := cfg.ClockSkew
	if clockSkew < 0 {
		clockSkew = 0
	}

	return &Service{
		staff:      cfg.Staff,
		sessions:   cfg.Sessions,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
		signer:     jwa.HS256,
		validator: TokenValidator{
			Issuer:    issuer,
			Audience:  audience,
			ClockSkew: clockSkew,
			Algorithm: jwa.HS256,
		},
		issuer:    issuer,
		audience:  audience,
		clockSkew: clockSkew,
	}, nil
}

// WithNow allows tests to override the time provider.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Login verifies credentials and issues a new JWT/refresh token pair.
func (s *Service) Login(ctx context.Context, email, password, userAgent, ip string) (LoginResult, error) {
	normalizedEmail := strings.TrimSpace(strings.ToLower(email))
	if normalizedEmail == "" || password == "" {
		return LoginResult{}, invalidCredentials(nil)
	}

	account, err := s.staff.GetByEmail(ctx, normalizedEmail)
	if err != nil {
		return LoginResult{}, invalidCredentials(nil)
	}
	if !account.Active {
		return LoginResult{}, common.NewAppError("ACCOUNT_DISABLED", "account is disabled", http.StatusForbidden, nil)
	}

	ok, err := argon2id.ComparePasswordAndHash(password, account.PasswordHash)
	if err != nil || !ok {
		return LoginResult{}, invalidCredentials(err)
	}

	accessToken, accessExpiry, err := s.signAccessToken(account)
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, refreshExpiry, err := s.createSession(ctx, account.ID, userAgent, ip)
	if err != nil {
		return LoginResult{}, fmt.Errorf("create session: %w", err)
	}

	return LoginResult{
		Staff:         account,
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
		AccessExpiry:  accessExpiry,
		RefreshExpiry: refreshExpiry,
	}, nil
}

// Logout revokes the refresh token.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	token := strings.TrimSpace(refreshToken)
	if token == "" {
		return nil
	}
	return s.sessions.DeleteByTokenHash(ctx, common.Sha256Hex(token))
}

// Refresh validates and rotates a refresh token, issuing a fresh token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (RefreshResult, error) {
	token := strings.TrimSpace(refreshToken)
	if token == "" {
		return RefreshResult{}, invalidRefresh(nil)
	}

	hashed := common.Sha256Hex(token)
	session, err := s.sessions.GetByTokenHash(ctx, hashed)
	if err != nil {
		return RefreshResult{}, invalidRefresh(err)
	}
	if s.now().After(session.ExpiresAt) {
		_ = s.sessions.DeleteByTokenHash(ctx, hashed)
		return RefreshResult{}, invalidRefresh(nil)
	}

	account, err := s.staff.GetByID(ctx, session.StaffID)
	if err != nil || !account.Active {
		_ = s.sessions.DeleteByTokenHash(ctx, hashed)
		return RefreshResult{}, invalidRefresh(err)
	}

	accessToken, accessExpiry, err := s.signAccessToken(account)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("sign access token: %w", err)
	}

	newToken, newHash, refreshExpiry, err := s.newRefreshToken()
	if err != nil {
		return RefreshResult{}, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.sessions.Rotate(ctx, session.ID, newHash, refreshExpiry); err != nil {
		_ = s.sessions.DeleteByTokenHash(ctx, hashed)
		return RefreshResult{}, fmt.Errorf("rotate session token: %w", err)
	}

	return RefreshResult{
		AccessToken:   accessToken,
		AccessExpiry:  accessExpiry,
		RefreshToken:  newToken,
		RefreshExpiry: refreshExpiry,
	}, nil
}

// Me fetches the currently authenticated staff account.
func (s *Service) Me(ctx context.Context, staffID string) (staff.Staff, error) {
	id, err := uuid.Parse(strings.TrimSpace(staffID))
	if err != nil {
		return staff.Staff{}, common.ErrUnauthorized()
	}
	account, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return staff.Staff{}, common.ErrUnauthorized()
	}
	return account, nil
}

// RevokeAll deletes every session held by the staff account.
func (s *Service) RevokeAll(ctx context.Context, staffID uuid.UUID) error {
	return s.sessions.DeleteByStaff(ctx, staffID)
}

// ParseAccessToken validates an access token and returns the subject and roles.
func (s *Service) ParseAccessToken(token string) (string, []string, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", nil, common.NewAppError("UNAUTHORIZED", "missing token", http.StatusUnauthorized, nil)
	}
	algorithm, err := extractTokenAlgorithm(trimmed)
	if err != nil {
		return "", nil, common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	if s.validator.Algorithm != "" && algorithm != s.validator.Algorithm {
		return "", nil, common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, fmt.Errorf("unexpected token algorithm %s", algorithm))
	}
	parsed, err := jwt.ParseString(trimmed, jwt.WithKey(algorithm, s.secret))
	if err != nil {
		return "", nil, common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	if err := s.validator.Validate(parsed, algorithm, s.now()); err != nil {
		return "", nil, common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	return parsed.Subject(), extractRoles(parsed), nil
}

func extractRoles(tok jwt.Token) []string {
	raw, ok := tok.Get(rolesClaim)
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		roles := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				roles = append(roles, s)
			}
		}
		return roles
	}
	return nil
}

func extractTokenAlgorithm(token string) (jwa.SignatureAlgorithm, error) {
	message, err := jws.ParseString(token)
	if err != nil {
		return "", err
	}
	signatures := message.Signatures()
	if len(signatures) == 0 {
		return "", errors.New("auth: token contains no signatures")
	}
	var algorithm jwa.SignatureAlgorithm
	for _, sig := range signatures {
		headers := sig.ProtectedHeaders()
		if headers == nil {
			return "", errors.New("auth: token missing protected headers")
		}
		alg := headers.Algorithm()
		if alg == "" {
			return "", errors.New("auth: token missing algorithm")
		}
		if alg == jwa.NoSignature {
			return "", errors.New("auth: token uses none algorithm")
		}
		if algorithm == "" {
			algorithm = alg
		} else if algorithm != alg {
			return "", fmt.Errorf("auth: mixed token algorithms detected")
		}
	}
	return algorithm, nil
}

func (s *Service) signAccessToken(account staff.Staff) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.accessTTL)
	builder := jwt.NewBuilder().
		Subject(account.ID.String()).
		Issuer(s.issuer).
		Audience([]string{s.audience}).
		IssuedAt(now).
		NotBefore(now.Add(-s.clockSkew)).
		Expiration(expiresAt).
		Claim(rolesClaim, account.Roles)
	token, err := builder.Build()
	if err != nil {
		return "", time.Time{}, err
	}
	signed, err := jwt.Sign(token, jwt.WithKey(s.signer, s.secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return string(signed), expiresAt, nil
}

func (s *Service) createSession(ctx context.Context, staffID uuid.UUID, userAgent, ip string) (string, time.Time, error) {
	token, hashed, expiresAt, err := s.newRefreshToken()
	if err != nil {
		return "", time.Time{}, err
	}
	if _, err := s.sessions.Create(ctx, staffID, hashed, userAgent, ip, expiresAt); err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func (s *Service) newRefreshToken() (string, string, time.Time, error) {
	token, err := generateToken(48)
	if err != nil {
		return "", "", time.Time{}, err
	}
	expiresAt := s.now().Add(s.refreshTTL)
	return token, common.Sha256Hex(token), expiresAt, nil
}

func generateToken(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func invalidCredentials(err error) *common.AppError {
	return common.NewAppError("INVALID_CREDENTIALS", "invalid email or password", http.StatusUnauthorized, err)
}

func invalidRefresh(err error) *common.AppError {
	return common.NewAppError("UNAUTHORIZED", "invalid refresh token", http.StatusUnauthorized, err)
}
