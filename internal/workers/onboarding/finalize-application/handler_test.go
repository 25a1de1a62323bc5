package finalizeapplication

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"murmax-onboarding/internal/common/config"
	"murmax-onboarding/internal/common/errors"
	"murmax-onboarding/internal/common/logger"
	"murmax-onboarding/internal/draftstore"
	"murmax-onboarding/internal/handoff"
	"murmax-onboarding/internal/onboarding"
)

// ==========================
// Mocks and Helpers
// ==========================

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, app onboarding.FinalizedApplication) (string, error) {
	args := m.Called(ctx, app)
	return args.String(0), args.Error(1)
}

type failingStore struct {
	*draftstore.MemoryStore
	err error
}

func (s *failingStore) Finalize(context.Context, onboarding.Draft) (onboarding.FinalizedApplication, error) {
	return onboarding.FinalizedApplication{}, s.err
}

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "murmax-onboarding",
		ElementId:          "Activity_FinalizeApplication",
		CustomHeaders:      "{}",
		Worker:             "test-worker",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

func shipperDraft() json.RawMessage {
	return json.RawMessage(`{"biz":"Acme Produce","address":"1 Main St","pay":"ACH","kyc":"EIN 12-3456789","terms":true}`)
}

func newTestHandler(t *testing.T, store onboarding.Store, publisher onboarding.Publisher) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{
		Store:     store,
		Publisher: publisher,
		Logger:    logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

// ==========================
// Handler Creation
// ==========================

func TestHandler_NewHandler(t *testing.T) {
	tests := []struct {
		name    string
		opts    HandlerOptions
		wantErr string
	}{
		{
			name: "valid",
			opts: HandlerOptions{Store: draftstore.NewMemoryStore(), Logger: logger.NewNoOpLogger()},
		},
		{
			name: "default logger",
			opts: HandlerOptions{Store: draftstore.NewMemoryStore()},
		},
		{
			name:    "missing store",
			opts:    HandlerOptions{},
			wantErr: "store is required",
		},
		{
			name: "invalid timeout",
			opts: HandlerOptions{
				Store:  draftstore.NewMemoryStore(),
				Config: &Config{MaxJobsActive: 1, Timeout: -time.Second, UploadLimitMB: 10},
			},
			wantErr: "timeout must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := NewHandler(tt.opts)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, h)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, h.logger)
			assert.NotNil(t, h.errorHandler)
			assert.True(t, h.IsEnabled())
		})
	}
}

// ==========================
// Input Parsing
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	h := newTestHandler(t, draftstore.NewMemoryStore(), nil)

	tests := []struct {
		name      string
		variables map[string]interface{}
		wantErr   bool
	}{
		{
			name:      "valid with extra process variables",
			variables: map[string]interface{}{"role": "Shipper", "draft": map[string]interface{}{"biz": "Acme"}, "businessKey": "abc"},
		},
		{
			name:      "missing draft",
			variables: map[string]interface{}{"role": "Shipper"},
			wantErr:   true,
		},
		{
			name:      "unknown role",
			variables: map[string]interface{}{"role": "Pilot", "draft": map[string]interface{}{}},
			wantErr:   true,
		},
		{
			name:      "draft is not an object",
			variables: map[string]interface{}{"role": "Driver", "draft": "name=Ray"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := h.parseInput(createMockJob(42, tt.variables))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Shipper", input.Role)
			assert.JSONEq(t, `{"biz":"Acme"}`, string(input.Draft))
		})
	}
}

// ==========================
// Execute
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	store := draftstore.NewMemoryStore()
	bridge := handoff.NewBridge(store, nil)
	h := newTestHandler(t, store, bridge)

	out, err := h.Execute(context.Background(), &Input{Role: "shipper", Draft: shipperDraft()})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out.ApplicationID, "Shipper-"))
	assert.Equal(t, out.ApplicationID, out.DirectoryRecordID)
	assert.Equal(t, "Shipper", out.Role)
	assert.Empty(t, out.HandoffError)
	_, err = time.Parse(time.RFC3339, out.FinalizedAt)
	assert.NoError(t, err)

	records, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Acme Produce", records[0].Biz)

	app, ok, err := store.LoadFinalized(context.Background(), onboarding.RoleShipper)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, out.ApplicationID, app.ID())
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		store    onboarding.Store
		wantCode errors.ErrorCode
	}{
		{
			name:     "unknown role",
			input:    &Input{Role: "Pilot", Draft: json.RawMessage(`{}`)},
			wantCode: errors.ErrCodeUnknownRole,
		},
		{
			name:     "unknown field",
			input:    &Input{Role: "Broker", Draft: json.RawMessage(`{"biz":"Acme"}`)},
			wantCode: errors.ErrCodeInvalidDraft,
		},
		{
			name:     "incomplete draft",
			input:    &Input{Role: "Broker", Draft: json.RawMessage(`{"mc":"MC-1"}`)},
			wantCode: errors.ErrCodeInvalidDraft,
		},
		{
			name:     "invalid dispatcher access role",
			input:    &Input{Role: "Dispatcher", Draft: json.RawMessage(`{"company":"X","ein":"1","dispId":"D1","role":"Owner","trainingDone":true}`)},
			wantCode: errors.ErrCodeInvalidDraft,
		},
		{
			name:     "finalize failure",
			input:    &Input{Role: "Shipper", Draft: shipperDraft()},
			store:    &failingStore{MemoryStore: draftstore.NewMemoryStore(), err: stderrors.New("redis: i/o timeout")},
			wantCode: errors.ErrCodePersistenceFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := tt.store
			if store == nil {
				store = draftstore.NewMemoryStore()
			}
			publisher := &MockPublisher{}
			h := newTestHandler(t, store, publisher)

			out, err := h.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.True(t, errors.HasCode(err, tt.wantCode), err.Error())
			publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_Execute_HandoffFailureCompletes(t *testing.T) {
	publisher := &MockPublisher{}
	publisher.On("Publish", mock.Anything, mock.AnythingOfType("onboarding.FinalizedApplication")).
		Return("", stderrors.New("directory unavailable"))

	h := newTestHandler(t, draftstore.NewMemoryStore(), publisher)
	out, err := h.Execute(context.Background(), &Input{Role: "Shipper", Draft: shipperDraft()})

	require.NoError(t, err)
	assert.NotEmpty(t, out.ApplicationID)
	assert.Empty(t, out.DirectoryRecordID)
	assert.Equal(t, "directory unavailable", out.HandoffError)
	publisher.AssertExpectations(t)
}

func TestBPMNMapping(t *testing.T) {
	invalid := errors.ConvertToBPMNError(errors.NewInvalidDraftError("x"))
	assert.Equal(t, "INVALID_DRAFT", invalid.Code)
	assert.Equal(t, 0, invalid.Retries)

	persistence := errors.ConvertToBPMNError(errors.NewPersistenceError("finalize the application", stderrors.New("down")))
	assert.Equal(t, "PERSISTENCE_FAILED", persistence.Code)
	assert.Equal(t, 3, persistence.Retries)
}

// ==========================
// Config
// ==========================

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		errMsg string
	}{
		{"default", DefaultConfig(), ""},
		{"zero timeout", &Config{MaxJobsActive: 1, UploadLimitMB: 1}, "timeout must be positive"},
		{"zero max jobs", &Config{Timeout: time.Second, UploadLimitMB: 1}, "max_jobs_active must be positive"},
		{"zero upload limit", &Config{Timeout: time.Second, MaxJobsActive: 1}, "upload_limit_mb must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfig_FromWorkerConfig(t *testing.T) {
	cfg := FromWorkerConfig(config.WorkerConfig{Enabled: false, MaxJobsActive: 2, Timeout: 1500}, 4)

	assert.False(t, cfg.Enabled)
	assert.Equal(t, 2, cfg.MaxJobsActive)
	assert.Equal(t, 1500*time.Millisecond, cfg.Timeout)
	assert.Equal(t, 4, cfg.UploadLimitMB)
	assert.NoError(t, cfg.Validate())
}

// ==========================
// Naming and Schemas
// ==========================

func TestTaskTypeNamingConvention(t *testing.T) {
	parts := strings.Split(TaskType, ".")
	require.Len(t, parts, 3)
	assert.Equal(t, "murmax", parts[0])
	assert.Equal(t, "onboarding", parts[1])
	assert.Equal(t, "finalize", parts[2])
	assert.Equal(t, strings.ToLower(TaskType), TaskType)
	assert.Equal(t, TaskType, (&Handler{}).GetTaskType())
}

func TestGetSchemas(t *testing.T) {
	in := GetInputSchema()
	assert.ElementsMatch(t, []string{"role", "draft"}, in.Required)
	assert.ElementsMatch(t, []string{"Driver", "Dispatcher", "Shipper", "Broker"}, in.Properties["role"].Enum)
	assert.True(t, in.AdditionalProperties)

	out := GetOutputSchema()
	for _, field := range []string{"applicationId", "directoryRecordId", "role", "finalizedAt", "handoffError"} {
		_, ok := out.Properties[field]
		assert.True(t, ok, field)
	}
	assert.False(t, out.AdditionalProperties)
}
