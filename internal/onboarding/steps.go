package onboarding

import (
	"fmt"
	"strings"
)

// Policy describes how a step combines its required fields.
type Policy string

const (
	PolicyAll  Policy = "all"  // every field must be present
	PolicyAny  Policy = "any"  // one of the fields is enough
	PolicyNone Policy = "none" // informational step, always valid
)

// Predicate reports whether a draft satisfies a step. Predicates are pure.
type Predicate func(Draft) bool

// StepDefinition is one static entry of a role's step table.
type StepDefinition struct {
	Position int
	Title    string
	Policy   Policy
	Fields   []string
	Valid    Predicate
}

// when adapts a predicate over one draft variant. Drafts of any other
// variant never satisfy it.
func when[T Draft](fn func(T) bool) Predicate {
	return func(d Draft) bool {
		v, ok := d.(T)
		return ok && fn(v)
	}
}

// present treats whitespace-only values as absent.
func present(s string) bool {
	return strings.TrimSpace(s) != ""
}

func always(Draft) bool { return true }

var stepTables = map[Role][]StepDefinition{
	RoleDriver: {
		{Title: "Registration", Policy: PolicyAll, Fields: []string{"name", "cdl", "phone"},
			Valid: when(func(d DriverDraft) bool { return present(d.Name) && present(d.CDL) && present(d.Phone) })},
		{Title: "Documents", Policy: PolicyAll, Fields: []string{"cdlFile", "coiFile"},
			Valid: when(func(d DriverDraft) bool { return d.CDLFile.Present() && d.COIFile.Present() })},
		{Title: "Account & Payouts", Policy: PolicyAll, Fields: []string{"payout"},
			Valid: when(func(d DriverDraft) bool { return present(d.Payout) })},
		{Title: "Orientation", Policy: PolicyAll, Fields: []string{"agree"},
			Valid: when(func(d DriverDraft) bool { return d.Agree })},
	},
	RoleDispatcher: {
		{Title: "Company Setup", Policy: PolicyAll, Fields: []string{"company", "ein"},
			Valid: when(func(d DispatcherDraft) bool { return present(d.Company) && present(d.EIN) })},
		{Title: "Access, Fleet & RBAC", Policy: PolicyAll, Fields: []string{"dispId", "role"},
			Valid: when(func(d DispatcherDraft) bool { return present(d.DispatcherID) && d.AccessRole != "" })},
		{Title: "Training", Policy: PolicyAll, Fields: []string{"trainingDone"},
			Valid: when(func(d DispatcherDraft) bool { return d.TrainingDone })},
	},
	RoleShipper: {
		{Title: "Business Profile", Policy: PolicyAll, Fields: []string{"biz", "address", "pay"},
			Valid: when(func(d ShipperDraft) bool { return present(d.Biz) && present(d.Address) && present(d.Pay) })},
		{Title: "KYC & Terms", Policy: PolicyAll, Fields: []string{"kyc", "terms"},
			Valid: when(func(d ShipperDraft) bool { return present(d.KYC) && d.Terms })},
		{Title: "Activation", Policy: PolicyNone, Valid: always},
	},
	RoleBroker: {
		{Title: "Registration", Policy: PolicyAny, Fields: []string{"mc", "dot"},
			Valid: when(func(d BrokerDraft) bool { return present(d.MC) || present(d.DOT) })},
		{Title: "Terms & Escrow", Policy: PolicyAll, Fields: []string{"terms", "split"},
			Valid: when(func(d BrokerDraft) bool { return d.Terms && present(d.Split) })},
	},
}

func init() {
	for role, steps := range stepTables {
		if len(steps) == 0 {
			panic(fmt.Sprintf("onboarding: role %s has no steps", role))
		}
		for i := range steps {
			steps[i].Position = i
		}
	}
}

// StepsFor returns the ordered step table for role, or nil for an unknown
// role. The returned slice is a copy.
func StepsFor(role Role) []StepDefinition {
	steps := stepTables[role]
	if steps == nil {
		return nil
	}
	out := make([]StepDefinition, len(steps))
	copy(out, steps)
	return out
}

// StepCount returns the number of steps for role.
func StepCount(role Role) int {
	return len(stepTables[role])
}
