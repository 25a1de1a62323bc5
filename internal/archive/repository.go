// Package archive keeps a durable Postgres copy of finalized applications
// and the directory records handed off from them.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"murmax-onboarding/internal/common/logger"
	"murmax-onboarding/internal/directory"
	"murmax-onboarding/internal/onboarding"
)

var ErrArchiveInsertFailed = errors.New("ARCHIVE_INSERT_FAILED")

// Repository writes archive rows. Re-archiving the same id is a no-op, so
// redelivered handoff events are harmless.
type Repository struct {
	db     *sql.DB
	logger logger.Logger
	now    func() time.Time
}

func NewRepository(db *sql.DB, log logger.Logger) *Repository {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Repository{db: db, logger: logger.Component(log, "archive"), now: time.Now}
}

// SaveApplication stores a finalized application and an audit entry. Only
// the application insert can fail the call.
func (r *Repository) SaveApplication(ctx context.Context, app onboarding.FinalizedApplication) error {
	fields, err := json.Marshal(app.Draft())
	if err != nil {
		return fmt.Errorf("%w: encode fields: %v", ErrArchiveInsertFailed, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO onboarding_applications (id, role, fields, finalized_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`,
		app.ID(),
		string(app.Role()),
		fields,
		app.FinalizedAt(),
		r.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("%w: application %s: %v", ErrArchiveInsertFailed, app.ID(), err)
	}

	r.audit(ctx, "application_finalized", "application", app.ID(), map[string]interface{}{
		"role": string(app.Role()),
	})
	return nil
}

// SaveRecord stores a directory record.
func (r *Repository) SaveRecord(ctx context.Context, rec directory.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: encode record: %v", ErrArchiveInsertFailed, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO directory_records (id, role, display_name, record, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`,
		rec.ID,
		string(rec.Role),
		rec.DisplayName(),
		payload,
		rec.Created(),
	)
	if err != nil {
		return fmt.Errorf("%w: record %s: %v", ErrArchiveInsertFailed, rec.ID, err)
	}
	return nil
}

// CountByRole returns the number of archived applications per role.
func (r *Repository) CountByRole(ctx context.Context) (map[onboarding.Role]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT role, COUNT(*) FROM onboarding_applications GROUP BY role`)
	if err != nil {
		return nil, fmt.Errorf("count applications: %w", err)
	}
	defer rows.Close()

	counts := make(map[onboarding.Role]int)
	for rows.Next() {
		var (
			role  string
			count int
		)
		if err := rows.Scan(&role, &count); err != nil {
			return nil, fmt.Errorf("scan application count: %w", err)
		}
		counts[onboarding.Role(role)] = count
	}
	return counts, rows.Err()
}

func (r *Repository) audit(ctx context.Context, eventType, resourceType, resourceID string, details map[string]interface{}) {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("{}")
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		eventType,
		resourceType,
		resourceID,
		detailsJSON,
		r.now().UTC(),
	)
	if err != nil {
		r.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":      err.Error(),
			"resourceId": resourceID,
		})
	}
}
