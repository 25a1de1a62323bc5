package join

import "murmax-onboarding/internal/common/validation"

func GetFormSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"role", "fullName", "email", "phone", "city", "state", "accept"},
		Properties: map[string]validation.Property{
			"role": {
				Type:        "string",
				Description: "Applicant role",
				Enum:        Roles,
			},
			"fullName": {
				Type:        "string",
				Description: "Applicant full name",
				MinLength:   validation.IntPtr(1),
				MaxLength:   validation.IntPtr(200),
			},
			"email": {
				Type:        "string",
				Description: "Contact email",
				Format:      "email",
				MaxLength:   validation.IntPtr(254),
			},
			"phone": {
				Type:        "string",
				Description: "Contact phone number",
				MinLength:   validation.IntPtr(1),
				MaxLength:   validation.IntPtr(40),
			},
			"city": {
				Type:      "string",
				MinLength: validation.IntPtr(1),
				MaxLength: validation.IntPtr(100),
			},
			"state": {
				Type:      "string",
				MinLength: validation.IntPtr(1),
				MaxLength: validation.IntPtr(100),
			},
			"vehicleClass": {
				Type:        "string",
				Description: "Driver vehicle class",
				Enum:        VehicleClasses,
			},
			"licenseType": {
				Type:        "string",
				Description: "Driver license type",
				Enum:        LicenseTypes,
			},
			"endorsements": {
				Type:        "array",
				Description: "Driver license endorsements",
				Items: &validation.Property{
					Type: "string",
					Enum: Endorsements,
				},
			},
			"accept": {
				Type:        "boolean",
				Description: "Terms of Service and Privacy Policy accepted",
			},
		},
		AdditionalProperties: false,
	}
}

func GetResponseSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"success", "message"},
		Properties: map[string]validation.Property{
			"success": {
				Type:        "boolean",
				Description: "Whether the application was received",
			},
			"message": {
				Type:        "string",
				Description: "Human-readable result shown on the page",
			},
		},
		AdditionalProperties: false,
	}
}
