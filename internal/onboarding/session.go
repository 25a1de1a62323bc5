package onboarding

import "errors"

// Rejections returned by Session transitions. The session is left unchanged
// whenever one of these is returned.
var (
	ErrStepInvalid     = errors.New("current step is not valid")
	ErrNoNextStep      = errors.New("already at the last step")
	ErrNoPreviousStep  = errors.New("already at the first step")
	ErrNotTerminalStep = errors.New("finish is only available on the last step")
	ErrRoleMismatch    = errors.New("draft belongs to a different role")
)

// Session is the position of one wizard attempt: AtStep(index) within the
// step table of role. It is a value; transitions return a new Session.
type Session struct {
	role  Role
	index int
}

// NewSession starts a session for role at step 0.
func NewSession(role Role) (Session, error) {
	if StepCount(role) == 0 {
		return Session{}, ErrUnknownRole
	}
	return Session{role: role}, nil
}

func (s Session) Role() Role { return s.role }

func (s Session) Index() int { return s.index }

func (s Session) StepCount() int { return StepCount(s.role) }

// Step returns the definition of the current step. The zero Session has no
// step table and yields the zero StepDefinition.
func (s Session) Step() StepDefinition {
	steps := stepTables[s.role]
	if s.index < 0 || s.index >= len(steps) {
		return StepDefinition{}
	}
	return steps[s.index]
}

// IsTerminal reports whether the session is on the last step.
func (s Session) IsTerminal() bool {
	return s.index == s.StepCount()-1
}

// Valid evaluates the current step's predicate against d.
func (s Session) Valid(d Draft) bool {
	if d == nil || d.Role() != s.role {
		return false
	}
	return s.Step().Valid(d)
}

// Next moves to the following step when the current one is valid.
func (s Session) Next(d Draft) (Session, error) {
	if d == nil || d.Role() != s.role {
		return s, ErrRoleMismatch
	}
	if s.IsTerminal() {
		return s, ErrNoNextStep
	}
	if !s.Step().Valid(d) {
		return s, ErrStepInvalid
	}
	return Session{role: s.role, index: s.index + 1}, nil
}

// Back moves to the previous step regardless of validity.
func (s Session) Back() (Session, error) {
	if s.index == 0 {
		return s, ErrNoPreviousStep
	}
	return Session{role: s.role, index: s.index - 1}, nil
}

// CanFinish returns nil when the session is on the last step and that step
// is valid for d.
func (s Session) CanFinish(d Draft) error {
	if d == nil || d.Role() != s.role {
		return ErrRoleMismatch
	}
	if !s.IsTerminal() {
		return ErrNotTerminalStep
	}
	if !s.Step().Valid(d) {
		return ErrStepInvalid
	}
	return nil
}

// Progress is the completion percentage shown by the wizard:
// index/n*100, plus one step's share when the current step is valid.
func (s Session) Progress(d Draft) float64 {
	n := float64(s.StepCount())
	if n == 0 {
		return 0
	}
	pct := float64(s.index) / n * 100
	if s.Valid(d) {
		pct += 100 / n
	}
	return pct
}

// Complete reports whether every step of the role is satisfied by d.
func Complete(d Draft) bool {
	if d == nil {
		return false
	}
	steps := stepTables[d.Role()]
	if len(steps) == 0 {
		return false
	}
	for _, step := range steps {
		if !step.Valid(d) {
			return false
		}
	}
	return true
}

// FirstInvalidStep returns the first step d does not satisfy, or false when
// the application is complete.
func FirstInvalidStep(d Draft) (StepDefinition, bool) {
	if d == nil {
		return StepDefinition{}, false
	}
	for _, step := range stepTables[d.Role()] {
		if !step.Valid(d) {
			return step, true
		}
	}
	return StepDefinition{}, false
}
