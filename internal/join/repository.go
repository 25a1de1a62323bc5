package join

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"murmax-onboarding/internal/common/logger"
)

// PostgresRepository writes accepted submissions to join_submissions.
type PostgresRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresRepository(db *sql.DB, log logger.Logger) *PostgresRepository {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &PostgresRepository{db: db, logger: log}
}

func (r *PostgresRepository) Save(ctx context.Context, sub Submission) error {
	endorsements := sub.Form.Endorsements
	if endorsements == nil {
		endorsements = []string{}
	}
	endorsementsJSON, err := json.Marshal(endorsements)
	if err != nil {
		return fmt.Errorf("encode endorsements: %w", err)
	}

	var score sql.NullFloat64
	if sub.Score != nil {
		score = sql.NullFloat64{Float64: *sub.Score, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO join_submissions (
			id, role, full_name, email, phone, city, state,
			vehicle_class, license_type, endorsements, score, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		sub.ID,
		sub.Form.Role,
		sub.Form.FullName,
		sub.Form.Email,
		sub.Form.Phone,
		sub.Form.City,
		sub.Form.State,
		nullString(sub.Form.VehicleClass),
		nullString(sub.Form.LicenseType),
		endorsementsJSON,
		score,
		sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert join submission %s: %w", sub.ID, err)
	}

	r.logger.Debug("join submission stored", map[string]interface{}{
		"submissionId": sub.ID,
	})
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
