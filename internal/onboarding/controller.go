package onboarding

import (
	"context"
	"sync"
	"time"

	"murmax-onboarding/internal/common/errors"
	"murmax-onboarding/internal/common/logger"
	"murmax-onboarding/internal/common/metrics"
	"murmax-onboarding/internal/uploads"
)

// Store persists drafts and finalized applications per role.
//
// Load never reports absence as an error: a role without a saved draft
// yields the empty draft. A non-nil error means the backend failed; the
// returned draft is still usable (empty).
type Store interface {
	Load(ctx context.Context, role Role) (Draft, error)
	Save(ctx context.Context, d Draft) error
	Finalize(ctx context.Context, d Draft) (FinalizedApplication, error)
}

// Publisher hands a finalized application to the marketplace directory and
// returns the id of the directory record it created.
type Publisher interface {
	Publish(ctx context.Context, app FinalizedApplication) (string, error)
}

// StepView describes one step for rendering.
type StepView struct {
	Position int      `json:"position"`
	Title    string   `json:"title"`
	Policy   Policy   `json:"policy"`
	Fields   []string `json:"fields,omitempty"`
	Valid    bool     `json:"valid"`
}

// View is a snapshot of the controller for rendering and API responses.
type View struct {
	Role      Role                  `json:"role"`
	Index     int                   `json:"index"`
	StepCount int                   `json:"stepCount"`
	Title     string                `json:"title"`
	Steps     []StepView            `json:"steps"`
	Valid     bool                  `json:"valid"`
	CanNext   bool                  `json:"canNext"`
	CanBack   bool                  `json:"canBack"`
	CanFinish bool                  `json:"canFinish"`
	Progress  float64               `json:"progress"`
	Draft     Draft                 `json:"draft"`
	Notice    *errors.StandardError `json:"notice,omitempty"`
}

// Completion is the result of a successful Finish.
type Completion struct {
	Application       FinalizedApplication `json:"application"`
	DirectoryRecordID string               `json:"directoryRecordId,omitempty"`
	View              View                 `json:"session"`
}

// Controller drives one wizard attempt. Calls are serialized so that a
// session behaves as a single-threaded state machine even when shared by
// concurrent requests.
type Controller struct {
	mu          sync.Mutex
	store       Store
	publisher   Publisher
	logger      logger.Logger
	maxUploadMB int
	now         func() time.Time

	session Session
	draft   Draft
	notice  *errors.StandardError
}

type ControllerOption func(*Controller)

func WithLogger(l logger.Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithUploadLimitMB sets the attachment size limit applied by Update.
func WithUploadLimitMB(mb int) ControllerOption {
	return func(c *Controller) {
		if mb > 0 {
			c.maxUploadMB = mb
		}
	}
}

// NewController returns a controller with no role selected. SelectRole must
// be called before any other operation.
func NewController(store Store, publisher Publisher, opts ...ControllerOption) *Controller {
	c := &Controller{
		store:       store,
		publisher:   publisher,
		logger:      logger.NewNoOpLogger(),
		maxUploadMB: uploads.DefaultMaxSizeMB,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logger.Component(c.logger, "stepper")
	return c
}

var errNoRole = errors.NewValidationError("No role selected", "select a role before editing the application")

// SelectRole starts (or restarts) the wizard for role at step 0 with the
// role's saved draft. A failed load leaves an empty draft and a notice.
func (c *Controller) SelectRole(ctx context.Context, role Role) (View, error) {
	session, err := NewSession(role)
	if err != nil {
		return View{}, errors.NewUnknownRoleError(string(role))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.notice = nil
	draft, err := c.store.Load(ctx, role)
	if err != nil || draft == nil || draft.Role() != role {
		if err != nil {
			c.notice = errors.NewPersistenceError("load the saved draft", err)
			c.logger.Warn("draft load failed, starting empty", map[string]interface{}{
				"role":  role,
				"error": err.Error(),
			})
		}
		draft = MustNewDraft(role)
	}

	c.session = session
	c.draft = draft
	c.logger.Info("role selected", map[string]interface{}{"role": role})
	return c.viewLocked(), nil
}

// Update replaces the draft. The draft must belong to the active role and
// every selected file must satisfy its upload rule.
func (c *Controller) Update(d Draft) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.draft == nil {
		return View{}, errNoRole
	}
	return c.applyLocked(d)
}

// Patch applies a field-level edit: the posted fields are decoded over the
// current draft and every other field keeps its value.
func (c *Controller) Patch(fields []byte) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.draft == nil {
		return View{}, errNoRole
	}
	merged, err := MergeFields(c.draft, fields)
	if err != nil {
		return c.viewLocked(), errors.NewInvalidDraftError(err.Error())
	}
	return c.applyLocked(merged)
}

func (c *Controller) applyLocked(d Draft) (View, error) {
	if d == nil || d.Role() != c.session.Role() {
		return c.viewLocked(), errors.NewValidationError("Draft does not match the active role", ErrRoleMismatch.Error())
	}
	if err := ValidateAttachments(d, c.maxUploadMB); err != nil {
		return c.viewLocked(), errors.NewValidationError("Attachment rejected", err.Error())
	}

	c.notice = nil
	c.draft = d
	return c.viewLocked(), nil
}

// Next advances when the current step is valid.
func (c *Controller) Next() (View, error) {
	return c.transition("next", func() (Session, error) { return c.session.Next(c.draft) })
}

// Back returns to the previous step without checking validity.
func (c *Controller) Back() (View, error) {
	return c.transition("back", c.session.Back)
}

func (c *Controller) transition(name string, fn func() (Session, error)) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.draft == nil {
		return View{}, errNoRole
	}
	role := string(c.session.Role())
	next, err := fn()
	if err != nil {
		metrics.StepTransitions.WithLabelValues(role, name, metrics.OutcomeRejected).Inc()
		c.logger.Debug("transition rejected", map[string]interface{}{
			"transition": name,
			"index":      c.session.Index(),
			"reason":     err.Error(),
		})
		return c.viewLocked(), errors.NewStepRejectedError(name, err)
	}

	metrics.StepTransitions.WithLabelValues(role, name, metrics.OutcomeOK).Inc()
	c.session = next
	c.notice = nil
	return c.viewLocked(), nil
}

// SaveDraft persists the current draft without touching the step index.
// A failure is returned as a PERSISTENCE_FAILED notice and also recorded on
// the view; the in-memory draft is kept.
func (c *Controller) SaveDraft(ctx context.Context) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.draft == nil {
		return View{}, errNoRole
	}
	c.notice = nil
	if err := c.saveLocked(ctx); err != nil {
		return c.viewLocked(), err
	}
	return c.viewLocked(), nil
}

func (c *Controller) saveLocked(ctx context.Context) error {
	role := string(c.session.Role())
	if err := c.store.Save(ctx, c.draft); err != nil {
		metrics.DraftSaves.WithLabelValues(role, metrics.OutcomeFailed).Inc()
		c.notice = errors.NewPersistenceError("save the draft", err)
		c.logger.Warn("draft save failed", map[string]interface{}{"role": role, "error": err.Error()})
		return c.notice
	}
	metrics.DraftSaves.WithLabelValues(role, metrics.OutcomeOK).Inc()
	return nil
}

// Finish finalizes the application from the terminal step and hands it to
// the publisher. The draft is saved first; a failed save is only logged.
// Publishing happens strictly after finalize returns. A publish failure
// leaves the application finalized and is reported as a notice.
//
// Finish stays available after success, so calling it again creates a
// second, distinct application.
func (c *Controller) Finish(ctx context.Context) (Completion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.draft == nil {
		return Completion{}, errNoRole
	}
	role := c.session.Role()
	if err := c.session.CanFinish(c.draft); err != nil {
		metrics.StepTransitions.WithLabelValues(string(role), "finish", metrics.OutcomeRejected).Inc()
		return Completion{View: c.viewLocked()}, errors.NewStepRejectedError("finish", err)
	}

	start := c.now()
	c.notice = nil
	_ = c.saveLocked(ctx)

	app, err := c.store.Finalize(ctx, c.draft)
	if err != nil {
		metrics.StepTransitions.WithLabelValues(string(role), "finish", metrics.OutcomeFailed).Inc()
		c.notice = errors.NewPersistenceError("finalize the application", err)
		c.logger.Error("finalize failed", map[string]interface{}{"role": role, "error": err.Error()})
		return Completion{View: c.viewLocked()}, c.notice
	}
	metrics.ApplicationsFinalized.WithLabelValues(string(role)).Inc()
	metrics.StepTransitions.WithLabelValues(string(role), "finish", metrics.OutcomeOK).Inc()

	completion := Completion{Application: app}
	if c.publisher != nil {
		recordID, err := c.publisher.Publish(ctx, app)
		if err != nil {
			c.notice = errors.NewHandoffError("directory", err)
			c.logger.Warn("handoff failed after finalize", map[string]interface{}{
				"applicationId": app.ID(),
				"error":         err.Error(),
			})
		}
		completion.DirectoryRecordID = recordID
	}

	metrics.FinishDuration.WithLabelValues(string(role)).Observe(c.now().Sub(start).Seconds())
	c.logger.Info("application finalized", map[string]interface{}{
		"applicationId":     app.ID(),
		"role":              role,
		"directoryRecordId": completion.DirectoryRecordID,
	})
	completion.View = c.viewLocked()
	return completion, nil
}

// View returns the current snapshot.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft == nil {
		return View{}
	}
	return c.viewLocked()
}

// Role returns the active role, or "" before SelectRole.
func (c *Controller) Role() Role {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Role()
}

func (c *Controller) viewLocked() View {
	s := c.session
	steps := stepTables[s.Role()]
	views := make([]StepView, len(steps))
	for i, step := range steps {
		views[i] = StepView{
			Position: step.Position,
			Title:    step.Title,
			Policy:   step.Policy,
			Fields:   step.Fields,
			Valid:    step.Valid(c.draft),
		}
	}

	valid := s.Valid(c.draft)
	return View{
		Role:      s.Role(),
		Index:     s.Index(),
		StepCount: len(steps),
		Title:     s.Step().Title,
		Steps:     views,
		Valid:     valid,
		CanNext:   valid && !s.IsTerminal(),
		CanBack:   s.Index() > 0,
		CanFinish: s.CanFinish(c.draft) == nil,
		Progress:  s.Progress(c.draft),
		Draft:     c.draft,
		Notice:    c.notice,
	}
}
