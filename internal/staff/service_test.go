package staff

import (
	"context"
	"testing"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-agency/internal/common"
)

type fakeStore struct {
	byID    map[uuid.UUID]Staff
	byEmail map[string]Staff
}

func newFakeStore() *fakeStore {
	return &fakeStore{byID: map[uuid.UUID]Staff{}, byEmail: map[string]Staff{}}
}

func (f *fakeStore) Create(_ context.Context, name, email, passwordHash string, roles []string) (Staff, error) {
	if _, ok := f.byEmail[email]; ok {
		return Staff{}, ErrEmailTaken
	}
	s := Staff{ID: uuid.New(), Name: name, Email: email, PasswordHash: passwordHash, Roles: roles, Active: true}
	f.byID[s.ID] = s
	f.byEmail[email] = s
	return s, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (Staff, error) {
	s, ok := f.byID[id]
	if !ok {
		return Staff{}, ErrNotFound
	}
	return s, nil
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (Staff, error) {
	s, ok := f.byEmail[email]
	if !ok {
		return Staff{}, ErrNotFound
	}
	return s, nil
}

func (f *fakeStore) List(_ context.Context, limit, offset int) ([]Staff, int64, error) {
	out := make([]Staff, 0, len(f.byID))
	for _, s := range f.byID {
		out = append(out, s)
	}
	return out, int64(len(out)), nil
}

func (f *fakeStore) Update(_ context.Context, id uuid.UUID, name string, roles []string, active bool) (Staff, error) {
	s, ok := f.byID[id]
	if !ok {
		return Staff{}, ErrNotFound
	}
	s.Name, s.Roles, s.Active = name, roles, active
	f.byID[id] = s
	return s, nil
}

func (f *fakeStore) SetPIN(_ context.Context, id uuid.UUID, pinHash string) error {
	s, ok := f.byID[id]
	if !ok {
		return ErrNotFound
	}
	s.PINHash = pinHash
	s.PINSet = true
	f.byID[id] = s
	return nil
}

func (f *fakeStore) SetPassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	s, ok := f.byID[id]
	if !ok {
		return ErrNotFound
	}
	s.PasswordHash = passwordHash
	f.byID[id] = s
	return nil
}

func TestCreateHashesPasswordAndDefaultsRole(t *testing.T) {
	svc := &Service{Store: newFakeStore()}

	st, err := svc.Create(context.Background(), CreateParams{
		Name:     "Siti",
		Email:    "SITI@Example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	require.Equal(t, "siti@example.com", st.Email)
	require.Equal(t, []string{RoleStaff}, st.Roles)
	require.NotEqual(t, "correct horse battery", st.PasswordHash)

	ok, err := argon2id.ComparePasswordAndHash("correct horse battery", st.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	svc := &Service{Store: newFakeStore()}

	_, err := svc.Create(context.Background(), CreateParams{
		Name: "X", Email: "x@example.com", Password: "password123", Roles: []string{"superuser"},
	})
	require.Error(t, err)
	require.True(t, common.IsAppError(err))
}

func TestCreateDuplicateEmailConflicts(t *testing.T) {
	svc := &Service{Store: newFakeStore()}
	_, err := svc.Create(context.Background(), CreateParams{Name: "A", Email: "a@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateParams{Name: "B", Email: "a@example.com", Password: "password123"})
	require.Error(t, err)
}

func TestSetPIN(t *testing.T) {
	store := newFakeStore()
	svc := &Service{Store: store}
	st, err := svc.Create(context.Background(), CreateParams{Name: "A", Email: "a@example.com", Password: "password123"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		pin     string
		wantErr bool
	}{
		{"valid four digits", "1234", false},
		{"valid eight digits", "12345678", false},
		{"too short", "123", true},
		{"too long", "123456789", true},
		{"non numeric", "12a4", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.SetPIN(context.Background(), st.ID, tt.pin)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			got := store.byID[st.ID]
			ok, err := argon2id.ComparePasswordAndHash(tt.pin, got.PINHash)
			require.NoError(t, err)
			require.True(t, ok)
		})
	}
}

func TestSetPassword(t *testing.T) {
	store := newFakeStore()
	svc := &Service{Store: store}
	st, err := svc.Create(context.Background(), CreateParams{Name: "A", Email: "a@example.com", Password: "password123"})
	require.NoError(t, err)

	err = svc.SetPassword(context.Background(), st.ID, "wrong-password", "newpassword1")
	require.Error(t, err)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "INVALID_CREDENTIALS", appErr.Code)

	require.NoError(t, svc.SetPassword(context.Background(), st.ID, "password123", "newpassword1"))
	got := store.byID[st.ID]
	ok, err := argon2id.ComparePasswordAndHash("newpassword1", got.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)
}
