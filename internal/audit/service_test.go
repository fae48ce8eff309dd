package audit

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type memStore struct {
	entries []Entry
}

func (m *memStore) InsertEntry(_ context.Context, e Entry) (Entry, error) {
	m.entries = append(m.entries, e)
	return e, nil
}

func (m *memStore) ListEntries(_ context.Context, limit, offset int) ([]Entry, int64, error) {
	return m.entries, int64(len(m.entries)), nil
}

func TestRecordDisabledIsNoop(t *testing.T) {
	store := &memStore{}
	svc := Service{Store: store, Enabled: false}

	req := httptest.NewRequest("POST", "/api/v1/tickets", nil)
	require.NoError(t, svc.Record(context.Background(), Actor{Kind: ActorKindSystem}, "", "", "", req, 201, nil))
	require.Empty(t, store.entries)
}

func TestRecordBuildsActionAndResourceFromRoute(t *testing.T) {
	store := &memStore{}
	svc := Service{Store: store, Enabled: true}

	req := httptest.NewRequest("POST", "/api/v1/invoices/abc/void?force=1", nil)
	require.NoError(t, svc.Record(context.Background(), Actor{Kind: ActorKindAnonymous}, "", "", "abc", req, 0, nil))
	require.Len(t, store.entries, 1)

	e := store.entries[0]
	require.Equal(t, "POST /api/v1/invoices/abc/void", e.Action)
	require.Equal(t, "invoices.abc.void", e.ResourceType)
	require.Equal(t, 200, e.Status)
	require.JSONEq(t, `{"query":"force=1"}`, string(e.Metadata))
}

func TestRecordNormalizesUnknownActorKind(t *testing.T) {
	store := &memStore{}
	svc := Service{Store: store, Enabled: true}

	req := httptest.NewRequest("GET", "/api/v1/customers", nil)
	require.NoError(t, svc.Record(context.Background(), Actor{Kind: ActorKind("robot")}, "customers.list", "customers", "", req, 200, nil))
	require.Equal(t, ActorKindAnonymous, store.entries[0].ActorKind)
	require.Equal(t, "customers.list", store.entries[0].Action)
}
