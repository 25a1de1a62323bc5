package onboarding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"murmax-onboarding/internal/uploads"
)

func TestStepsFor_Tables(t *testing.T) {
	tests := []struct {
		role   Role
		titles []string
	}{
		{RoleDriver, []string{"Registration", "Documents", "Account & Payouts", "Orientation"}},
		{RoleDispatcher, []string{"Company Setup", "Access, Fleet & RBAC", "Training"}},
		{RoleShipper, []string{"Business Profile", "KYC & Terms", "Activation"}},
		{RoleBroker, []string{"Registration", "Terms & Escrow"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			steps := StepsFor(tt.role)
			require.Len(t, steps, len(tt.titles))
			for i, step := range steps {
				assert.Equal(t, i, step.Position)
				assert.Equal(t, tt.titles[i], step.Title)
				assert.NotNil(t, step.Valid)
			}
			assert.Equal(t, len(tt.titles), StepCount(tt.role))
		})
	}
}

func TestStepsFor_UnknownRole(t *testing.T) {
	assert.Nil(t, StepsFor(Role("Carrier")))
	assert.Zero(t, StepCount(Role("Carrier")))
}

func TestStepsFor_ReturnsCopy(t *testing.T) {
	steps := StepsFor(RoleDriver)
	steps[0].Title = "changed"
	assert.Equal(t, "Registration", StepsFor(RoleDriver)[0].Title)
}

func TestDriverRegistration_RequiresAllFields(t *testing.T) {
	step := StepsFor(RoleDriver)[0]

	tests := []struct {
		name  string
		draft DriverDraft
		valid bool
	}{
		{"all present", DriverDraft{Name: "J Doe", CDL: "CDL123", Phone: "555-0100"}, true},
		{"missing cdl", DriverDraft{Name: "J Doe", Phone: "555-0100"}, false},
		{"missing name", DriverDraft{CDL: "CDL123", Phone: "555-0100"}, false},
		{"missing phone", DriverDraft{Name: "J Doe", CDL: "CDL123"}, false},
		{"blank counts as absent", DriverDraft{Name: "  ", CDL: "CDL123", Phone: "555-0100"}, false},
		{"empty", DriverDraft{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, step.Valid(tt.draft))
		})
	}
}

func TestDriverDocuments_RequiresBothFiles(t *testing.T) {
	step := StepsFor(RoleDriver)[1]
	cdl := uploads.Attachment{Name: "cdl.pdf", SizeBytes: 1024}
	coi := uploads.Attachment{Name: "coi.pdf", SizeBytes: 1024}

	assert.False(t, step.Valid(DriverDraft{}))
	assert.False(t, step.Valid(DriverDraft{CDLFile: cdl}))
	assert.False(t, step.Valid(DriverDraft{COIFile: coi}))
	assert.True(t, step.Valid(DriverDraft{CDLFile: cdl, COIFile: coi}))
}

func TestBrokerRegistration_EitherIdentifier(t *testing.T) {
	step := StepsFor(RoleBroker)[0]
	require.Equal(t, PolicyAny, step.Policy)

	tests := []struct {
		name  string
		draft BrokerDraft
		valid bool
	}{
		{"dot only", BrokerDraft{MC: "", DOT: "123"}, true},
		{"mc only", BrokerDraft{MC: "567", DOT: ""}, true},
		{"both", BrokerDraft{MC: "567", DOT: "123"}, true},
		{"neither", BrokerDraft{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, step.Valid(tt.draft))
		})
	}
}

func TestOtherPredicates(t *testing.T) {
	tests := []struct {
		name  string
		role  Role
		index int
		draft Draft
		valid bool
	}{
		{"dispatcher company", RoleDispatcher, 0, DispatcherDraft{Company: "Acme", EIN: "12-3456789"}, true},
		{"dispatcher company missing ein", RoleDispatcher, 0, DispatcherDraft{Company: "Acme"}, false},
		{"dispatcher access", RoleDispatcher, 1, DispatcherDraft{DispatcherID: "D-1", AccessRole: AccessAdmin}, true},
		{"dispatcher access without role", RoleDispatcher, 1, DispatcherDraft{DispatcherID: "D-1"}, false},
		{"dispatcher training", RoleDispatcher, 2, DispatcherDraft{TrainingDone: true}, true},
		{"dispatcher training pending", RoleDispatcher, 2, DispatcherDraft{}, false},
		{"shipper profile", RoleShipper, 0, ShipperDraft{Biz: "Foods", Address: "1 Main", Pay: "ACH"}, true},
		{"shipper profile missing pay", RoleShipper, 0, ShipperDraft{Biz: "Foods", Address: "1 Main"}, false},
		{"shipper kyc", RoleShipper, 1, ShipperDraft{KYC: "passport", Terms: true}, true},
		{"shipper kyc without terms", RoleShipper, 1, ShipperDraft{KYC: "passport"}, false},
		{"shipper activation", RoleShipper, 2, ShipperDraft{}, true},
		{"broker terms", RoleBroker, 1, BrokerDraft{Terms: true, Split: "70/30"}, true},
		{"broker terms without split", RoleBroker, 1, BrokerDraft{Terms: true}, false},
		{"driver payouts", RoleDriver, 2, DriverDraft{Payout: "ACH"}, true},
		{"driver orientation", RoleDriver, 3, DriverDraft{Agree: true}, true},
		{"driver orientation unchecked", RoleDriver, 3, DriverDraft{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, StepsFor(tt.role)[tt.index].Valid(tt.draft))
		})
	}
}

func TestPredicates_RejectForeignVariant(t *testing.T) {
	full := DriverDraft{Name: "J Doe", CDL: "CDL123", Phone: "555-0100"}
	assert.False(t, StepsFor(RoleBroker)[0].Valid(full))
	assert.False(t, StepsFor(RoleDispatcher)[0].Valid(full))
}
