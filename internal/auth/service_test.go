package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-agency/internal/staff"
)

type fakeDirectory struct {
	accounts map[uuid.UUID]staff.Staff
}

func (f *fakeDirectory) GetByEmail(_ context.Context, email string) (staff.Staff, error) {
	for _, s := range f.accounts {
		if s.Email == email {
			return s, nil
		}
	}
	return staff.Staff{}, staff.ErrNotFound
}

func (f *fakeDirectory) GetByID(_ context.Context, id uuid.UUID) (staff.Staff, error) {
	s, ok := f.accounts[id]
	if !ok {
		return staff.Staff{}, staff.ErrNotFound
	}
	return s, nil
}

type memSessions struct {
	byHash map[string]Session
}

func newMemSessions() *memSessions {
	return &memSessions{byHash: map[string]Session{}}
}

func (m *memSessions) Create(_ context.Context, staffID uuid.UUID, tokenHash, userAgent, ip string, expiresAt time.Time) (Session, error) {
	s := Session{ID: uuid.New(), StaffID: staffID, TokenHash: tokenHash, UserAgent: userAgent, IP: ip, ExpiresAt: expiresAt}
	m.byHash[tokenHash] = s
	return s, nil
}

func (m *memSessions) GetByTokenHash(_ context.Context, tokenHash string) (Session, error) {
	s, ok := m.byHash[tokenHash]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return s, nil
}

func (m *memSessions) Rotate(_ context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	for hash, s := range m.byHash {
		if s.ID == id {
			delete(m.byHash, hash)
			s.TokenHash = tokenHash
			s.ExpiresAt = expiresAt
			m.byHash[tokenHash] = s
			return nil
		}
	}
	return ErrSessionNotFound
}

func (m *memSessions) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	delete(m.byHash, tokenHash)
	return nil
}

func (m *memSessions) DeleteByStaff(_ context.Context, staffID uuid.UUID) error {
	for hash, s := range m.byHash {
		if s.StaffID == staffID {
			delete(m.byHash, hash)
		}
	}
	return nil
}

func newTestService(t *testing.T) (*Service, staff.Staff, *memSessions) {
	t.Helper()
	hash, err := argon2id.CreateHash("secret-password", argon2id.DefaultParams)
	require.NoError(t, err)

	account := staff.Staff{
		ID:           uuid.New(),
		Name:         "Rafi",
		Email:        "rafi@agency.local",
		PasswordHash: hash,
		Roles:        []string{staff.RoleBillCreator},
		Active:       true,
	}
	dir := &fakeDirectory{accounts: map[uuid.UUID]staff.Staff{account.ID: account}}
	sessions := newMemSessions()

	svc, err := NewService(Config{
		Staff:    dir,
		Sessions: sessions,
		Secret:   "0123456789abcdef0123456789abcdef",
		Issuer:   "backend-agency",
		Audience: "agency-backoffice",
	})
	require.NoError(t, err)
	return svc, account, sessions
}

func TestLoginIssuesValidTokenPair(t *testing.T) {
	svc, account, sessions := newTestService(t)

	result, err := svc.Login(context.Background(), "rafi@agency.local", "secret-password", "go-test", "127.0.0.1")
	require.NoError(t, err)
	require.NotEmpty(t, result.AccessToken)
	require.NotEmpty(t, result.RefreshToken)
	require.Len(t, sessions.byHash, 1)

	subject, roles, err := svc.ParseAccessToken(result.AccessToken)
	require.NoError(t, err)
	require.Equal(t, account.ID.String(), subject)
	require.Equal(t, []string{staff.RoleBillCreator}, roles)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "rafi@agency.local", "wrong", "go-test", "127.0.0.1")
	require.Error(t, err)
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	svc, account, _ := newTestService(t)
	dir := svc.staff.(*fakeDirectory)
	disabled := dir.accounts[account.ID]
	disabled.Active = false
	dir.accounts[account.ID] = disabled

	_, err := svc.Login(context.Background(), "rafi@agency.local", "secret-password", "go-test", "127.0.0.1")
	require.Error(t, err)
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _, sessions := newTestService(t)

	login, err := svc.Login(context.Background(), "rafi@agency.local", "secret-password", "go-test", "127.0.0.1")
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The original token is no longer redeemable.
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	require.Error(t, err)
	require.Len(t, sessions.byHash, 1)
}

func TestRefreshRejectsExpiredSession(t *testing.T) {
	svc, _, _ := newTestService(t)

	login, err := svc.Login(context.Background(), "rafi@agency.local", "secret-password", "go-test", "127.0.0.1")
	require.NoError(t, err)

	svc.WithNow(func() time.Time { return time.Now().Add(48 * 24 * time.Hour) })
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	require.Error(t, err)
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	svc, _, _ := newTestService(t)

	login, err := svc.Login(context.Background(), "rafi@agency.local", "secret-password", "go-test", "127.0.0.1")
	require.NoError(t, err)

	svc.WithNow(func() time.Time { return time.Now().Add(2 * time.Hour) })
	_, _, err = svc.ParseAccessToken(login.AccessToken)
	require.Error(t, err)
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	svc, _, _ := newTestService(t)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, _, err := svc.ParseAccessToken(token)
		require.Error(t, err, token)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _, sessions := newTestService(t)

	login, err := svc.Login(context.Background(), "rafi@agency.local", "secret-password", "go-test", "127.0.0.1")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), login.RefreshToken))
	require.Empty(t, sessions.byHash)

	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	require.Error(t, err)
}
