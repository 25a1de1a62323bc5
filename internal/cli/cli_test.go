package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"murmax-onboarding/internal/directory"
	"murmax-onboarding/internal/draftstore"
	"murmax-onboarding/internal/onboarding"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestApp(t *testing.T) (*App, *draftstore.MemoryStore) {
	t.Helper()
	store := draftstore.NewMemoryStore()
	return &App{
		Store:         store,
		UploadLimitMB: 10,
		Now:           func() time.Time { return fixedNow },
		Styles:        PlainStyles(),
	}, store
}

func run(t *testing.T, app *App, args ...string) (string, ExecuteResult) {
	t.Helper()
	out := &bytes.Buffer{}
	res := Run(context.Background(), app, args, out, out)
	return out.String(), res
}

func TestStepsCommand(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		contains []string
		exitCode int
	}{
		{
			name:     "driver",
			role:     "driver",
			contains: []string{"Driver onboarding (4 steps)", "1. Registration", "name, cdl, phone", "4. Orientation"},
		},
		{
			name:     "shipper informational step",
			role:     "Shipper",
			contains: []string{"Shipper onboarding (3 steps)", "3. Activation", "none"},
		},
		{
			name:     "broker any policy",
			role:     "BROKER",
			contains: []string{"Broker onboarding (2 steps)", "any", "mc, dot"},
		},
		{
			name:     "unknown role",
			role:     "pilot",
			contains: []string{"error:"},
			exitCode: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestApp(t)
			out, res := run(t, app, "steps", tt.role)
			assert.Equal(t, tt.exitCode, res.ExitCode)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestDraftShow(t *testing.T) {
	app, store := newTestApp(t)
	require.NoError(t, store.Save(context.Background(), onboarding.ShipperDraft{Biz: "Acme", Address: "1 Main", Pay: "ACH"}))

	out, res := run(t, app, "draft", "show", "shipper")
	require.Equal(t, 0, res.ExitCode, out)
	assert.Contains(t, out, "Shipper draft")
	assert.Contains(t, out, "1. Business Profile")
	assert.Contains(t, out, "done")
	assert.Contains(t, out, "missing")
	assert.Contains(t, out, "Next step: KYC & Terms")
}

func TestDraftShow_JSON(t *testing.T) {
	app, store := newTestApp(t)
	require.NoError(t, store.Save(context.Background(), onboarding.BrokerDraft{MC: "MC-42", Terms: true, Split: "80/20"}))

	out, res := run(t, app, "draft", "show", "broker", "--json")
	require.Equal(t, 0, res.ExitCode, out)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &fields))
	assert.Equal(t, "MC-42", fields["mc"])
	assert.Equal(t, true, fields["terms"])
}

func TestDraftShow_Empty(t *testing.T) {
	app, _ := newTestApp(t)
	out, res := run(t, app, "draft", "show", "dispatcher")
	require.Equal(t, 0, res.ExitCode)
	assert.Contains(t, out, "Next step: Company Setup")
}

func TestDraftFinalized(t *testing.T) {
	app, store := newTestApp(t)

	out, res := run(t, app, "draft", "finalized", "shipper")
	assert.Equal(t, 2, res.ExitCode)
	assert.Contains(t, out, "no Shipper application has been finalized")

	finalized, err := store.Finalize(context.Background(), onboarding.ShipperDraft{Biz: "Acme"})
	require.NoError(t, err)

	out, res = run(t, app, "draft", "finalized", "shipper")
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, out, finalized.ID())
}

func TestDirectorySeedAndList(t *testing.T) {
	app, store := newTestApp(t)
	ctx := context.Background()

	out, res := run(t, app, "directory", "seed", "driver")
	require.Equal(t, 0, res.ExitCode, out)
	assert.Contains(t, out, "seeded TEST-Driver-")

	require.NoError(t, store.Append(ctx, directory.Record{
		ID: "Shipper-1", Role: onboarding.RoleShipper, Biz: "Acme Produce",
		CreatedAt: fixedNow.AddDate(0, 0, -10).UnixMilli(),
	}))

	tests := []struct {
		name        string
		args        []string
		contains    []string
		notContains []string
		exitCode    int
	}{
		{
			name:     "all",
			args:     []string{"directory", "list"},
			contains: []string{"Test Driver (test)", "Acme Produce", "2 of 2 records"},
		},
		{
			name:        "by role",
			args:        []string{"directory", "list", "--role", "shipper"},
			contains:    []string{"Acme Produce", "1 of 2 records"},
			notContains: []string{"Test Driver"},
		},
		{
			name:        "by date",
			args:        []string{"directory", "list", "--from", "2026-03-14", "--to", "2026-03-14"},
			contains:    []string{"Test Driver"},
			notContains: []string{"Acme Produce"},
		},
		{
			name:     "no match",
			args:     []string{"directory", "list", "--search", "zzz"},
			contains: []string{"no records"},
		},
		{
			name:     "bad date",
			args:     []string{"directory", "list", "--from", "14/03/2026"},
			contains: []string{"invalid from date"},
			exitCode: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, res := run(t, app, tt.args...)
			assert.Equal(t, tt.exitCode, res.ExitCode, out)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, out, unwanted)
			}
		})
	}
}

func TestDirectoryList_JSON(t *testing.T) {
	app, _ := newTestApp(t)
	_, res := run(t, app, "directory", "seed", "broker")
	require.Equal(t, 0, res.ExitCode)

	out, res := run(t, app, "directory", "list", "--json")
	require.Equal(t, 0, res.ExitCode)

	var records []directory.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "MC-000000", records[0].MC)
	assert.True(t, records[0].Test)
}

func TestRegistryCommands(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "registry.json")
	require.NoError(t, os.WriteFile(valid, []byte(`{
  "version": "1.0.0",
  "activities": [
    {"id": "finalize-application", "displayName": "Finalize Application", "category": "onboarding",
     "taskType": "murmax.onboarding.finalize", "implementationStatus": "completed"}
  ]
}`), 0o644))
	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"activities": []}`), 0o644))

	app, _ := newTestApp(t)

	out, res := run(t, app, "registry", "validate", "--path", valid)
	assert.Equal(t, 0, res.ExitCode, out)
	assert.Contains(t, out, "Found 1 activities")

	out, res = run(t, app, "registry", "list", "--path", valid)
	assert.Equal(t, 0, res.ExitCode, out)
	assert.Contains(t, out, "murmax.onboarding.finalize")

	out, res = run(t, app, "registry", "validate", "--path", empty)
	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, out, "no activities")

	_, res = run(t, app, "registry", "validate", "--path", filepath.Join(dir, "absent.json"))
	assert.Equal(t, 1, res.ExitCode)
}

func TestIsExitError(t *testing.T) {
	code, ok := IsExitError(NewExitError(3))
	assert.True(t, ok)
	assert.Equal(t, 3, code)

	_, ok = IsExitError(assert.AnError)
	assert.False(t, ok)
}

func TestDirectorySeed_AllRoles(t *testing.T) {
	app, store := newTestApp(t)

	out, res := run(t, app, "directory", "seed")
	require.Equal(t, 0, res.ExitCode, out)
	for _, role := range onboarding.AllRoles() {
		assert.Contains(t, out, "seeded TEST-"+string(role)+"-")
	}

	records, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, len(onboarding.AllRoles()))
}
