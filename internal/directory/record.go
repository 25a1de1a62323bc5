// Package directory holds the marketplace directory records created when an
// onboarding application is handed off, and the queries run over them.
package directory

import (
	"fmt"
	"strings"
	"time"

	"murmax-onboarding/internal/onboarding"
)

// Display defaults for fields the applicant never filled in.
const (
	DefaultDriverName   = "New Driver"
	DefaultEquipment    = "26' Box"
	DefaultHOS          = "Available"
	DefaultDispatchName = "New Dispatch"
	DefaultRoleLevel    = "Viewer"
	DefaultShipperName  = "New Shipper"
	DefaultBrokerSplit  = "N/A"
	TestRecordIDPrefix  = "TEST-"
)

// Record is one marketplace profile. Only the fields relevant to Role are
// populated.
type Record struct {
	ID        string          `json:"id"`
	Role      onboarding.Role `json:"role"`
	CreatedAt int64           `json:"createdAt"` // unix milliseconds

	// Driver
	Name      string `json:"name,omitempty"`
	Equipment string `json:"equipment,omitempty"`
	HOS       string `json:"hos,omitempty"`

	// Dispatcher
	Company   string   `json:"company,omitempty"`
	Drivers   []string `json:"drivers,omitempty"`
	RoleLevel string   `json:"roleLevel,omitempty"`

	// Shipper
	Biz          string `json:"biz,omitempty"`
	Address      string `json:"address,omitempty"`
	EscrowLinked bool   `json:"escrowLinked,omitempty"`

	// Broker
	MC    string `json:"mc,omitempty"`
	DOT   string `json:"dot,omitempty"`
	Split string `json:"split,omitempty"`

	Test bool `json:"test,omitempty"`
}

// Created returns CreatedAt as a time.
func (r Record) Created() time.Time {
	return time.UnixMilli(r.CreatedAt).UTC()
}

// DisplayName is the headline shown for the record in listings.
func (r Record) DisplayName() string {
	switch r.Role {
	case onboarding.RoleDriver:
		return r.Name
	case onboarding.RoleDispatcher:
		return r.Company
	case onboarding.RoleShipper:
		return r.Biz
	case onboarding.RoleBroker:
		if r.MC != "" {
			return "MC " + r.MC
		}
		if r.DOT != "" {
			return "DOT " + r.DOT
		}
	}
	return r.ID
}

// FromApplication builds the directory record for a finalized application.
// The record shares the application's id and takes its creation time from
// the finalization timestamp.
func FromApplication(app onboarding.FinalizedApplication) (Record, error) {
	if app.IsZero() {
		return Record{}, fmt.Errorf("directory record requires a finalized application")
	}
	rec := Record{
		ID:        app.ID(),
		Role:      app.Role(),
		CreatedAt: app.FinalizedAt().UnixMilli(),
	}

	switch d := app.Draft().(type) {
	case onboarding.DriverDraft:
		rec.Name = orDefault(d.Name, DefaultDriverName)
		rec.Equipment = orDefault(d.Vehicle, orDefault(d.EquipmentID, DefaultEquipment))
		rec.HOS = DefaultHOS
	case onboarding.DispatcherDraft:
		rec.Company = orDefault(d.Company, DefaultDispatchName)
		rec.Drivers = d.LinkedDrivers()
		rec.RoleLevel = orDefault(string(d.AccessRole), DefaultRoleLevel)
	case onboarding.ShipperDraft:
		rec.Biz = orDefault(d.Biz, DefaultShipperName)
		rec.Address = strings.TrimSpace(d.Address)
		rec.EscrowLinked = strings.TrimSpace(d.Pay) != ""
	case onboarding.BrokerDraft:
		rec.MC = strings.TrimSpace(d.MC)
		rec.DOT = strings.TrimSpace(d.DOT)
		rec.Split = orDefault(d.Split, DefaultBrokerSplit)
	default:
		return Record{}, fmt.Errorf("%w: %q", onboarding.ErrUnknownRole, app.Role())
	}
	return rec, nil
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

// TestRecord returns a seeded profile for role, used by operators to check
// the marketplace view without running the wizard.
func TestRecord(role onboarding.Role, at time.Time) (Record, error) {
	if !role.Valid() {
		return Record{}, fmt.Errorf("%w: %q", onboarding.ErrUnknownRole, role)
	}
	ms := at.UnixMilli()
	rec := Record{
		ID:        fmt.Sprintf("%s%s-%d", TestRecordIDPrefix, role, ms),
		Role:      role,
		CreatedAt: ms,
		Test:      true,
	}
	switch role {
	case onboarding.RoleDriver:
		rec.Name = "Test Driver"
		rec.Equipment = DefaultEquipment
		rec.HOS = DefaultHOS
	case onboarding.RoleDispatcher:
		rec.Company = "Test Dispatch LLC"
		rec.Drivers = []string{"DRV-001", "DRV-002"}
		rec.RoleLevel = string(onboarding.AccessJunior)
	case onboarding.RoleShipper:
		rec.Biz = "Test Shipper Inc"
		rec.Address = "14725 Center Ave, Clewiston, FL"
		rec.EscrowLinked = true
	case onboarding.RoleBroker:
		rec.MC = "MC-000000"
		rec.DOT = "0000000"
		rec.Split = "70/30"
	}
	return rec, nil
}
