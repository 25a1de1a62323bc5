package directory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"murmax-onboarding/internal/onboarding"
)

func finalized(t *testing.T, id string, d onboarding.Draft, at time.Time) onboarding.FinalizedApplication {
	t.Helper()
	app, err := onboarding.NewFinalizedApplication(id, d, at)
	require.NoError(t, err)
	return app
}

func TestFromApplication_Defaults(t *testing.T) {
	at := time.UnixMilli(1740830400000)

	tests := []struct {
		name  string
		draft onboarding.Draft
		want  Record
	}{
		{
			name:  "driver defaults",
			draft: onboarding.DriverDraft{},
			want:  Record{Role: onboarding.RoleDriver, Name: "New Driver", Equipment: "26' Box", HOS: "Available"},
		},
		{
			name:  "driver equipment falls back to eqid",
			draft: onboarding.DriverDraft{Name: "J Doe", EquipmentID: "EQ-901"},
			want:  Record{Role: onboarding.RoleDriver, Name: "J Doe", Equipment: "EQ-901", HOS: "Available"},
		},
		{
			name:  "driver vehicle wins over eqid",
			draft: onboarding.DriverDraft{Vehicle: "Reefer", EquipmentID: "EQ-901"},
			want:  Record{Role: onboarding.RoleDriver, Name: "New Driver", Equipment: "Reefer", HOS: "Available"},
		},
		{
			name:  "dispatcher",
			draft: onboarding.DispatcherDraft{Drivers: "DRV-1, DRV-2,,", AccessRole: onboarding.AccessAdmin},
			want:  Record{Role: onboarding.RoleDispatcher, Company: "New Dispatch", Drivers: []string{"DRV-1", "DRV-2"}, RoleLevel: "Admin"},
		},
		{
			name:  "dispatcher default level",
			draft: onboarding.DispatcherDraft{Company: "Acme"},
			want:  Record{Role: onboarding.RoleDispatcher, Company: "Acme", RoleLevel: "Viewer"},
		},
		{
			name:  "shipper never filled in",
			draft: onboarding.ShipperDraft{},
			want:  Record{Role: onboarding.RoleShipper, Biz: "New Shipper"},
		},
		{
			name:  "shipper with payment",
			draft: onboarding.ShipperDraft{Biz: "Foods", Address: "1 Main", Pay: "ACH"},
			want:  Record{Role: onboarding.RoleShipper, Biz: "Foods", Address: "1 Main", EscrowLinked: true},
		},
		{
			name:  "broker",
			draft: onboarding.BrokerDraft{DOT: "123"},
			want:  Record{Role: onboarding.RoleBroker, DOT: "123", Split: "N/A"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := FromApplication(finalized(t, "app-1", tt.draft, at))
			require.NoError(t, err)

			tt.want.ID = "app-1"
			tt.want.CreatedAt = at.UnixMilli()
			assert.Equal(t, tt.want, rec)
		})
	}
}

func TestFromApplication_Zero(t *testing.T) {
	_, err := FromApplication(onboarding.FinalizedApplication{})
	assert.Error(t, err)
}

func TestTestRecord(t *testing.T) {
	at := time.UnixMilli(1740830400000)
	for _, role := range onboarding.AllRoles() {
		rec, err := TestRecord(role, at)
		require.NoError(t, err)
		assert.Equal(t, "TEST-"+string(role)+"-1740830400000", rec.ID)
		assert.True(t, rec.Test)
		assert.NotEqual(t, rec.ID, rec.DisplayName())
	}

	_, err := TestRecord(onboarding.Role("Leasing"), at)
	assert.ErrorIs(t, err, onboarding.ErrUnknownRole)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "MC 567", Record{Role: onboarding.RoleBroker, MC: "567"}.DisplayName())
	assert.Equal(t, "DOT 123", Record{Role: onboarding.RoleBroker, DOT: "123"}.DisplayName())
	assert.Equal(t, "b-1", Record{ID: "b-1", Role: onboarding.RoleBroker}.DisplayName())
}
