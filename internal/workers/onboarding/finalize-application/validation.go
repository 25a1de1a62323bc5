package finalizeapplication

import (
	"murmax-onboarding/internal/common/validation"
	"murmax-onboarding/internal/onboarding"
)

// GetInputSchema allows other process variables next to role and draft.
func GetInputSchema() validation.JSONSchema {
	roles := make([]string, 0, 4)
	for _, r := range onboarding.AllRoles() {
		roles = append(roles, string(r))
	}
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"role", "draft"},
		Properties: map[string]validation.Property{
			"role": {
				Type:        "string",
				Description: "Onboarding role of the application",
				Enum:        roles,
			},
			"draft": {
				Type:        "object",
				Description: "Field object of the role's draft",
			},
		},
		AdditionalProperties: true,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"applicationId", "role", "finalizedAt"},
		Properties: map[string]validation.Property{
			"applicationId": {
				Type:        "string",
				Description: "Identifier of the finalized application",
			},
			"directoryRecordId": {
				Type:        "string",
				Description: "Identifier of the marketplace record created from it",
			},
			"role": {
				Type: "string",
			},
			"finalizedAt": {
				Type:   "string",
				Format: "date-time",
			},
			"handoffError": {
				Type:        "string",
				Description: "Set when the application was finalized but not handed off",
			},
		},
		AdditionalProperties: false,
	}
}
