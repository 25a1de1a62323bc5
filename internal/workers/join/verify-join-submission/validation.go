package verifyjoinsubmission

import (
	"murmax-onboarding/internal/common/validation"
)

// GetInputSchema checks the envelope only. The form itself is validated by
// the join service so that workflow and page submissions are judged alike.
func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"form", "recaptchaToken"},
		Properties: map[string]validation.Property{
			"form": {
				Type:        "object",
				Description: "Join page application form",
			},
			"recaptchaToken": {
				Type:        "string",
				Description: "reCAPTCHA token produced by the page",
				MinLength:   validation.IntPtr(1),
			},
			"action": {
				Type:        "string",
				Description: "Expected reCAPTCHA action",
			},
		},
		AdditionalProperties: true,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"success", "message", "statusCode"},
		Properties: map[string]validation.Property{
			"success":    {Type: "boolean"},
			"message":    {Type: "string"},
			"statusCode": {Type: "integer"},
		},
		AdditionalProperties: false,
	}
}
