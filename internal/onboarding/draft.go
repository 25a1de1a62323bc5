package onboarding

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"murmax-onboarding/internal/uploads"
)

// Draft is the in-progress application for one role. The concrete type is
// one of DriverDraft, DispatcherDraft, ShipperDraft or BrokerDraft; the set is
// closed.
type Draft interface {
	Role() Role
	isDraft()
}

type DriverDraft struct {
	Name        string             `json:"name,omitempty"`
	CDL         string             `json:"cdl,omitempty"`
	Phone       string             `json:"phone,omitempty"`
	Vehicle     string             `json:"vehicle,omitempty"`
	CDLFile     uploads.Attachment `json:"cdlFile,omitzero"`
	COIFile     uploads.Attachment `json:"coiFile,omitzero"`
	MedFile     uploads.Attachment `json:"medFile,omitzero"`
	RegFile     uploads.Attachment `json:"regFile,omitzero"`
	Payout      string             `json:"payout,omitempty"`
	EquipmentID string             `json:"eqid,omitempty"`
	Agree       bool               `json:"agree,omitempty"`
}

type DispatcherDraft struct {
	Company      string             `json:"company,omitempty"`
	EIN          string             `json:"ein,omitempty"`
	W9           uploads.Attachment `json:"w9,omitzero"`
	Packet       uploads.Attachment `json:"packet,omitzero"`
	DispatcherID string             `json:"dispId,omitempty"`
	AccessRole   AccessRole         `json:"role,omitempty"`
	Drivers      string             `json:"drivers,omitempty"`
	TrainingDone bool               `json:"trainingDone,omitempty"`
}

type ShipperDraft struct {
	Biz     string             `json:"biz,omitempty"`
	Address string             `json:"address,omitempty"`
	Pay     string             `json:"pay,omitempty"`
	W9      uploads.Attachment `json:"w9,omitzero"`
	KYC     string             `json:"kyc,omitempty"`
	Terms   bool               `json:"terms,omitempty"`
}

type BrokerDraft struct {
	MC        string             `json:"mc,omitempty"`
	DOT       string             `json:"dot,omitempty"`
	Authority uploads.Attachment `json:"auth,omitzero"`
	COI       uploads.Attachment `json:"coi,omitzero"`
	Split     string             `json:"split,omitempty"`
	Terms     bool               `json:"terms,omitempty"`
}

func (DriverDraft) Role() Role     { return RoleDriver }
func (DispatcherDraft) Role() Role { return RoleDispatcher }
func (ShipperDraft) Role() Role    { return RoleShipper }
func (BrokerDraft) Role() Role     { return RoleBroker }

func (DriverDraft) isDraft()     {}
func (DispatcherDraft) isDraft() {}
func (ShipperDraft) isDraft()    {}
func (BrokerDraft) isDraft()     {}

// AccessRole is the dispatcher's role-based access level.
type AccessRole string

const (
	AccessAdmin  AccessRole = "Admin"
	AccessJunior AccessRole = "Junior"
	AccessViewer AccessRole = "Viewer"
)

func (a AccessRole) Valid() bool {
	switch a {
	case "", AccessAdmin, AccessJunior, AccessViewer:
		return true
	}
	return false
}

// LinkedDrivers splits the comma-separated driver list, dropping blanks.
func (d DispatcherDraft) LinkedDrivers() []string {
	var out []string
	for _, part := range strings.Split(d.Drivers, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// NewDraft returns the empty draft for role.
func NewDraft(role Role) (Draft, error) {
	switch role {
	case RoleDriver:
		return DriverDraft{}, nil
	case RoleDispatcher:
		return DispatcherDraft{}, nil
	case RoleShipper:
		return ShipperDraft{}, nil
	case RoleBroker:
		return BrokerDraft{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
}

// MustNewDraft is NewDraft for roles known to be valid.
func MustNewDraft(role Role) Draft {
	d, err := NewDraft(role)
	if err != nil {
		panic(err)
	}
	return d
}

var ErrInvalidDraft = errors.New("invalid draft")

type envelope struct {
	Role   Role            `json:"role"`
	Fields json.RawMessage `json:"fields"`
}

// EncodeDraft serializes a draft with its role tag.
func EncodeDraft(d Draft) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: nil draft", ErrInvalidDraft)
	}
	fields, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode %s draft: %w", d.Role(), err)
	}
	return json.Marshal(envelope{Role: d.Role(), Fields: fields})
}

// DecodeDraft reverses EncodeDraft. Unknown fields are ignored so that
// drafts written by older releases still load.
func DecodeDraft(data []byte) (Draft, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDraft, err)
	}
	if !env.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, env.Role)
	}
	return decodeFields(env.Role, env.Fields, false)
}

// DecodeFields decodes a bare field object for role, rejecting unknown
// fields.
func DecodeFields(role Role, fields []byte) (Draft, error) {
	return decodeFields(role, fields, true)
}

func decodeFields(role Role, fields []byte, strict bool) (Draft, error) {
	base, err := NewDraft(role)
	if err != nil {
		return nil, err
	}
	return decodeOnto(base, fields, strict)
}

// MergeFields applies a partial field object to a copy of d. Fields absent
// from the object keep their current value; unknown fields are rejected.
func MergeFields(d Draft, fields []byte) (Draft, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: nil draft", ErrInvalidDraft)
	}
	return decodeOnto(d, fields, true)
}

// decodeOnto decodes fields over a copy of base. Draft variants are value
// types, so the copy never aliases base.
func decodeOnto(base Draft, fields []byte, strict bool) (Draft, error) {
	trimmed := bytes.TrimSpace(fields)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return base, nil
	}

	role := base.Role()
	decode := func(v interface{}) error {
		dec := json.NewDecoder(bytes.NewReader(fields))
		if strict {
			dec.DisallowUnknownFields()
		}
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("%w: %s fields: %v", ErrInvalidDraft, role, err)
		}
		return nil
	}

	switch v := base.(type) {
	case DriverDraft:
		if err := decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	case DispatcherDraft:
		if err := decode(&v); err != nil {
			return nil, err
		}
		if !v.AccessRole.Valid() {
			return nil, fmt.Errorf("%w: dispatcher role %q", ErrInvalidDraft, v.AccessRole)
		}
		return v, nil
	case ShipperDraft:
		if err := decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	case BrokerDraft:
		if err := decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
}

// attachmentFields lists the file fields of a draft keyed by JSON name.
func attachmentFields(d Draft) map[string]uploads.Attachment {
	switch v := d.(type) {
	case DriverDraft:
		return map[string]uploads.Attachment{
			"cdlFile": v.CDLFile, "coiFile": v.COIFile, "medFile": v.MedFile, "regFile": v.RegFile,
		}
	case DispatcherDraft:
		return map[string]uploads.Attachment{"w9": v.W9, "packet": v.Packet}
	case ShipperDraft:
		return map[string]uploads.Attachment{"w9": v.W9}
	case BrokerDraft:
		return map[string]uploads.Attachment{"auth": v.Authority, "coi": v.COI}
	}
	return nil
}

var attachmentAccept = map[Role]map[string]string{
	RoleDriver: {
		"cdlFile": ".pdf,.png,.jpg,.jpeg",
		"coiFile": ".pdf",
		"medFile": ".pdf,.png,.jpg",
		"regFile": ".pdf",
	},
	RoleDispatcher: {"w9": ".pdf", "packet": ".pdf"},
	RoleShipper:    {"w9": ".pdf"},
	RoleBroker:     {"auth": ".pdf", "coi": ".pdf"},
}

// AttachmentRules returns the upload rule for each file field of role.
func AttachmentRules(role Role, maxMB int) map[string]uploads.Rule {
	out := make(map[string]uploads.Rule, len(attachmentAccept[role]))
	for field, accept := range attachmentAccept[role] {
		out[field] = uploads.ParseAccept(accept).WithMaxMB(maxMB)
	}
	return out
}

// ValidateAttachments checks every selected file of d against its rule and
// returns the first violation in field-name order.
func ValidateAttachments(d Draft, maxMB int) error {
	rules := AttachmentRules(d.Role(), maxMB)
	files := attachmentFields(d)

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := uploads.Validate(name, files[name], rules[name]); err != nil {
			return err
		}
	}
	return nil
}
