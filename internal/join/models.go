// Package join handles the public Join page: a single-form application for
// drivers, dispatchers and shippers gated by reCAPTCHA v3.
package join

import (
	"strings"
	"time"

	"murmax-onboarding/internal/common/logger"
)

// Action is the reCAPTCHA action the Join page executes.
const Action = "join"

// Roles accepted on the Join page. Brokers onboard through the wizard only.
const (
	RoleDriver     = "driver"
	RoleDispatcher = "dispatcher"
	RoleShipper    = "shipper"
)

const (
	DefaultVehicleClass = "P1 - Car/Sedan"
	DefaultLicenseType  = "Regular (E)"
)

// Response messages returned to the Join page.
const (
	MessageMissingSecret = "Server missing reCAPTCHA secret"
	MessageInvalidForm   = "Invalid application"
	MessageNotAccepted   = "Terms of Service and Privacy Policy must be accepted"
	MessageVerification  = "Failed reCAPTCHA verification"
	MessageReceived      = "Application received. Our team will contact you."
	MessageUnexpected    = "Unexpected error"
)

var (
	Roles = []string{RoleDriver, RoleDispatcher, RoleShipper}

	VehicleClasses = []string{
		"P1 - Car/Sedan",
		"P2 - SUV/Pickup",
		"P3 - Cargo Van/Sprinter",
		"P4 - 16–26 ft Box Truck",
		"P5 - Tractor-Trailer",
	}

	LicenseTypes = []string{
		"Regular (E)",
		"Commercial (CDL)",
		"Chauffeur",
		"Learner",
		"Other",
	}

	Endorsements = []string{
		"Hazmat (H)",
		"Tanker (N)",
		"Doubles/Triples (T)",
		"TWIC",
	}
)

// Form is the Join page application. The vehicle, license and endorsement
// fields are only collected from drivers.
type Form struct {
	Role         string   `json:"role"`
	FullName     string   `json:"fullName"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	VehicleClass string   `json:"vehicleClass,omitempty"`
	LicenseType  string   `json:"licenseType,omitempty"`
	Endorsements []string `json:"endorsements,omitempty"`
	Accept       bool     `json:"accept"`
}

// Normalized trims text fields and fills the driver defaults the page
// preselects.
func (f Form) Normalized() Form {
	out := f
	out.Role = strings.ToLower(strings.TrimSpace(f.Role))
	out.FullName = strings.TrimSpace(f.FullName)
	out.Email = strings.TrimSpace(f.Email)
	out.Phone = strings.TrimSpace(f.Phone)
	out.City = strings.TrimSpace(f.City)
	out.State = strings.TrimSpace(f.State)
	out.VehicleClass = strings.TrimSpace(f.VehicleClass)
	out.LicenseType = strings.TrimSpace(f.LicenseType)

	if out.Role == RoleDriver {
		if out.VehicleClass == "" {
			out.VehicleClass = DefaultVehicleClass
		}
		if out.LicenseType == "" {
			out.LicenseType = DefaultLicenseType
		}
	}
	if len(f.Endorsements) > 0 {
		out.Endorsements = append([]string(nil), f.Endorsements...)
	}
	return out
}

// Request is the body posted by the Join page.
type Request struct {
	Form           Form   `json:"form"`
	RecaptchaToken string `json:"recaptchaToken"`
	Action         string `json:"action,omitempty"`
}

// Response is returned for every submission.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Submission is an accepted application as it is stored and mailed.
type Submission struct {
	ID        string    `json:"id"`
	Form      Form      `json:"form"`
	Score     *float64  `json:"score,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type ServiceDependencies struct {
	Verifier Verifier
	Store    SubmissionStore
	Notifier Notifier
	Logger   logger.Logger
}
