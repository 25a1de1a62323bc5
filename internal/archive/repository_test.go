package archive

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"murmax-onboarding/internal/common/logger"
	"murmax-onboarding/internal/directory"
	"murmax-onboarding/internal/handoff"
	"murmax-onboarding/internal/onboarding"
)

// ==========================
// Test Helper Functions
// ==========================

func setupRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db, logger.NewTestLogger(t)), mock
}

func testApplication(t *testing.T) onboarding.FinalizedApplication {
	t.Helper()
	app, err := onboarding.NewFinalizedApplication("Broker-1740830400000",
		onboarding.BrokerDraft{MC: "567", Terms: true, Split: "70/30"}, time.UnixMilli(1740830400000))
	require.NoError(t, err)
	return app
}

// ==========================
// Repository Tests
// ==========================

func TestRepository_SaveApplication(t *testing.T) {
	repo, mock := setupRepo(t)
	app := testApplication(t)

	mock.ExpectExec(`INSERT INTO onboarding_applications`).
		WithArgs(
			"Broker-1740830400000",
			"Broker",
			sqlmock.AnyArg(), // fields JSON
			app.FinalizedAt(),
			sqlmock.AnyArg(), // created_at
		).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs("application_finalized", "application", "Broker-1740830400000", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.SaveApplication(context.Background(), app))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SaveApplication_AuditFailureIsNonFatal(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectExec(`INSERT INTO onboarding_applications`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnError(errors.New("relation audit_log does not exist"))

	assert.NoError(t, repo.SaveApplication(context.Background(), testApplication(t)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SaveApplication_InsertFailure(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectExec(`INSERT INTO onboarding_applications`).
		WillReturnError(errors.New("connection refused"))

	err := repo.SaveApplication(context.Background(), testApplication(t))
	assert.ErrorIs(t, err, ErrArchiveInsertFailed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SaveRecord(t *testing.T) {
	repo, mock := setupRepo(t)
	rec := directory.Record{ID: "Broker-1", Role: onboarding.RoleBroker, MC: "567", CreatedAt: 1740830400000}

	mock.ExpectExec(`INSERT INTO directory_records`).
		WithArgs("Broker-1", "Broker", "MC 567", sqlmock.AnyArg(), rec.Created()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.SaveRecord(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CountByRole(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(`SELECT role, COUNT\(\*\) FROM onboarding_applications`).
		WillReturnRows(sqlmock.NewRows([]string{"role", "count"}).
			AddRow("Driver", 3).
			AddRow("Broker", 1))

	counts, err := repo.CountByRole(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[onboarding.Role]int{onboarding.RoleDriver: 3, onboarding.RoleBroker: 1}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Consumer Tests
// ==========================

func TestConsumer_ArchivesApplicationAndRecord(t *testing.T) {
	repo, mock := setupRepo(t)
	app := testApplication(t)
	rec, err := directory.FromApplication(app)
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO onboarding_applications`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO directory_records`).WillReturnResult(sqlmock.NewResult(1, 1))

	c := NewConsumer(repo)
	assert.Equal(t, "archive", c.Name())
	require.NoError(t, c.Consume(context.Background(), handoff.Event{Application: app, Record: rec}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumer_StopsOnApplicationFailure(t *testing.T) {
	repo, mock := setupRepo(t)
	mock.ExpectExec(`INSERT INTO onboarding_applications`).WillReturnError(errors.New("disk full"))

	err := NewConsumer(repo).Consume(context.Background(), handoff.Event{Application: testApplication(t)})
	assert.ErrorIs(t, err, ErrArchiveInsertFailed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Migrations
// ==========================

func TestEmbeddedMigrations(t *testing.T) {
	names, err := MigrationNames()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"0001_onboarding_archive.down.sql",
		"0001_onboarding_archive.up.sql",
		"0002_join_submissions.down.sql",
		"0002_join_submissions.up.sql",
	}, names)
}
