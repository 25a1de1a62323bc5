package uploads

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultMaxSizeMB bounds an attachment when a rule does not set its own limit.
const DefaultMaxSizeMB = 10

// Attachment describes a file chosen for an onboarding document field. The
// zero value means no file was selected.
type Attachment struct {
	Name        string `json:"name,omitempty"`
	SizeBytes   int64  `json:"size,omitempty"`
	ContentType string `json:"contentType,omitempty"`
}

// IsZero reports whether no file data is recorded at all.
func (a Attachment) IsZero() bool {
	return a == Attachment{}
}

// UnmarshalJSON replaces the whole attachment, so a partial edit that
// selects a new file never keeps the size or type of the previous one.
// JSON null clears it.
func (a *Attachment) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*a = Attachment{}
		return nil
	}
	type plain Attachment
	var p plain
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return err
	}
	*a = Attachment(p)
	return nil
}

// Present reports whether a file has been selected.
func (a Attachment) Present() bool {
	return strings.TrimSpace(a.Name) != ""
}

// Rule constrains the files accepted for one field.
type Rule struct {
	Accept   []string // lower-case extensions without the dot; empty accepts anything
	MaxBytes int64
}

// ParseAccept turns an accept list such as ".pdf,.png" into a Rule with the
// default size limit. "*" and "" accept any extension.
func ParseAccept(accept string) Rule {
	rule := Rule{MaxBytes: DefaultMaxSizeMB * 1024 * 1024}
	accept = strings.TrimSpace(accept)
	if accept == "" || accept == "*" {
		return rule
	}
	for _, ext := range strings.Split(accept, ",") {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			rule.Accept = append(rule.Accept, ext)
		}
	}
	return rule
}

// WithMaxMB returns a copy of the rule with a new size limit.
func (r Rule) WithMaxMB(mb int) Rule {
	if mb > 0 {
		r.MaxBytes = int64(mb) * 1024 * 1024
	}
	return r
}

// Error is returned when an attachment violates its rule.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validate checks a selected file against rule. An absent attachment is
// always valid; requiring a file is the job of the step predicate.
func Validate(field string, att Attachment, rule Rule) error {
	if !att.Present() {
		return nil
	}
	if rule.MaxBytes > 0 && att.SizeBytes > rule.MaxBytes {
		return &Error{
			Field:  field,
			Reason: fmt.Sprintf("File too large (>%dMB)", rule.MaxBytes/(1024*1024)),
		}
	}
	if len(rule.Accept) == 0 {
		return nil
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(att.Name), "."))
	for _, allowed := range rule.Accept {
		if ext == allowed {
			return nil
		}
	}
	return &Error{Field: field, Reason: "Invalid type"}
}
