package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prontuario/prontuario/backend/go-services/internal/patient"
	"github.com/prontuario/prontuario/backend/go-services/internal/patient/service"
	"github.com/prontuario/prontuario/backend/go-services/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }

func seededOpener(t *testing.T) opener {
	t.Helper()
	s := store.NewMemoryStore()
	svc := service.New(s)
	_, err := svc.CreatePatient(context.Background(), patient.PatientInput{Name: strp("Ana"), TotalConsults: intp(2)})
	require.NoError(t, err)
	return func(ctx context.Context) (*service.Service, func(), error) {
		return service.New(s), func() {}, nil
	}
}

func run(t *testing.T, open opener, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSummaryCommand(t *testing.T) {
	out, err := run(t, seededOpener(t), "summary")
	require.NoError(t, err)
	var rep map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	summary := rep["summary"].(map[string]any)
	assert.Equal(t, float64(1), summary["totalPatients"])
	assert.Equal(t, float64(2), summary["totalConsults"])
}

func TestRemindersCommand(t *testing.T) {
	out, err := run(t, seededOpener(t), "reminders")
	require.NoError(t, err)
	var rem []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rem))
	assert.Len(t, rem, 3)
}

func TestAgendaCommand(t *testing.T) {
	out, err := run(t, seededOpener(t), "agenda")
	require.NoError(t, err)
	assert.JSONEq(t, `{"today":[],"upcoming":[]}`, out)
}

func TestExportCommand(t *testing.T) {
	out, err := run(t, seededOpener(t), "export")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "id,name,email"))
	assert.Contains(t, out, `"Ana"`)

	path := filepath.Join(t.TempDir(), "pacientes.xlsx")
	_, err = run(t, seededOpener(t), "export", "--format", "xlsx", "--out", path)
	require.NoError(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("PK"), b[:2])

	_, err = run(t, seededOpener(t), "export", "--format", "pdf")
	assert.Error(t, err)
}
