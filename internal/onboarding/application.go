package onboarding

import (
	"encoding/json"
	"fmt"
	"time"
)

// FinalizedApplication is the immutable snapshot produced by a successful
// finish. Fields are only reachable through getters; Draft returns a copy
// because every draft variant is a plain value.
type FinalizedApplication struct {
	id          string
	role        Role
	draft       Draft
	finalizedAt time.Time
}

// NewFinalizedApplication stamps d. The draft's role is authoritative.
func NewFinalizedApplication(id string, d Draft, finalizedAt time.Time) (FinalizedApplication, error) {
	if d == nil {
		return FinalizedApplication{}, fmt.Errorf("%w: nil draft", ErrInvalidDraft)
	}
	if id == "" {
		return FinalizedApplication{}, fmt.Errorf("finalized application requires an id")
	}
	return FinalizedApplication{
		id:          id,
		role:        d.Role(),
		draft:       d,
		finalizedAt: finalizedAt.UTC(),
	}, nil
}

func (a FinalizedApplication) ID() string             { return a.id }
func (a FinalizedApplication) Role() Role             { return a.role }
func (a FinalizedApplication) Draft() Draft           { return a.draft }
func (a FinalizedApplication) FinalizedAt() time.Time { return a.finalizedAt }

// IsZero reports whether the value was never initialized.
func (a FinalizedApplication) IsZero() bool {
	return a.id == ""
}

type finalizedJSON struct {
	ID          string          `json:"id"`
	Role        Role            `json:"role"`
	Fields      json.RawMessage `json:"fields"`
	FinalizedAt int64           `json:"finalizedAt"` // unix milliseconds
}

func (a FinalizedApplication) MarshalJSON() ([]byte, error) {
	fields, err := json.Marshal(a.draft)
	if err != nil {
		return nil, err
	}
	return json.Marshal(finalizedJSON{
		ID:          a.id,
		Role:        a.role,
		Fields:      fields,
		FinalizedAt: a.finalizedAt.UnixMilli(),
	})
}

func (a *FinalizedApplication) UnmarshalJSON(data []byte) error {
	var raw finalizedJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !raw.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRole, raw.Role)
	}
	d, err := decodeFields(raw.Role, raw.Fields, false)
	if err != nil {
		return err
	}
	app, err := NewFinalizedApplication(raw.ID, d, time.UnixMilli(raw.FinalizedAt))
	if err != nil {
		return err
	}
	*a = app
	return nil
}
