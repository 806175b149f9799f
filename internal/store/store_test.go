package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/prontuario/prontuario/backend/go-services/internal/patient"
	"github.com/prontuario/prontuario/backend/go-services/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func sampleDocument() *patient.Document {
	return &patient.Document{
		Patients:     []patient.Patient{{ID: "p1", Name: "Ana", TotalConsults: 2}},
		Appointments: []patient.Appointment{{ID: "a1", PatientID: "p1", Date: "2024-03-05T14:30", Status: "agendado"}},
	}
}

// exerciseStore checks the contract every backend shares.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	doc, err := s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, doc.Patients)
	require.NotNil(t, doc.Appointments)
	require.Empty(t, doc.Patients)

	require.NoError(t, s.Save(ctx, sampleDocument()))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, sampleDocument(), got)

	// save replaces the document as a whole
	require.NoError(t, s.Save(ctx, &patient.Document{}))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, got.Patients)
	require.Empty(t, got.Appointments)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	doc := sampleDocument()
	require.NoError(t, s.Save(ctx, doc))
	doc.Patients[0].Name = "mutated after save"

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "Ana", got.Patients[0].Name)
	got.Patients[0].Name = "mutated after load"

	again, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "Ana", again.Patients[0].Name)
}

func TestFileStore(t *testing.T) {
	exerciseStore(t, NewFileStore(filepath.Join(t.TempDir(), "nested", "db.json")))
}

func TestFileStoreInitializesMissingAndEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	s := NewFileStore(path)
	doc, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, doc.Patients)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `{"patients":[],"appointments":[]}`, string(b))
}

func TestFileStoreDefaultsMissingCollections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"patients":[{"id":7,"name":"Legacy"}]}`), 0o644))

	doc, err := NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, doc.Patients, 1)
	require.Equal(t, patient.ID("7"), doc.Patients[0].ID)
	require.NotNil(t, doc.Appointments)
}

func TestFileStoreUnavailable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	s := NewFileStore(filepath.Join(blocker, "db.json"))
	_, err := s.Load(context.Background())
	require.ErrorIs(t, err, ErrStorageUnavailable)
	require.ErrorIs(t, s.Save(context.Background(), sampleDocument()), ErrStorageUnavailable)

	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{not json"), 0o644))
	_, err = NewFileStore(corrupt).Load(context.Background())
	require.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestFileStoreDefaultPath(t *testing.T) {
	require.Equal(t, DefaultFileName, NewFileStore("").Path())
}

func TestRedisStore(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	s := NewRedisStore(client, "test:db")
	exerciseStore(t, s)

	require.True(t, m.Exists("test:db"))
	require.NoError(t, m.Set("test:db", "{broken"))
	_, err = s.Load(context.Background())
	require.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestRedisStoreUnavailable(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: m.Addr(), MaxRetries: -1})
	m.Close()

	_, err = NewRedisStore(client, "").Load(context.Background())
	require.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestInstrumentRecordsOperations(t *testing.T) {
	s := Instrument(NewMemoryStore())
	require.Same(t, s, Instrument(s))
	require.Equal(t, "memory", s.Name())

	before := testutil.ToFloat64(metrics.StoreOperations.WithLabelValues("memory", "load", "ok"))
	_, err := s.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), sampleDocument()))

	require.Equal(t, before+1, testutil.ToFloat64(metrics.StoreOperations.WithLabelValues("memory", "load", "ok")))
	require.GreaterOrEqual(t, testutil.ToFloat64(metrics.StoreOperations.WithLabelValues("memory", "save", "ok")), 1.0)
}
