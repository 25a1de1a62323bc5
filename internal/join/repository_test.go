package join

import (
	"context"
	"database/sql"
	stderrors "errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"murmax-onboarding/internal/common/errors"
	"murmax-onboarding/internal/common/logger"
)

// ==========================
// Postgres repository
// ==========================

func testSubmission() Submission {
	form := validForm().Normalized()
	form.Endorsements = []string{"Tanker (N)"}
	return Submission{
		ID:        "7f1c2d0e-0000-4000-8000-000000000001",
		Form:      form,
		Score:     score(0.9),
		CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPostgresRepository_Save(t *testing.T) {
	db, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sub := testSubmission()
	mockDB.ExpectExec("INSERT INTO join_submissions").
		WithArgs(
			sub.ID, "driver", "Jane Roe", "jane@example.com", "863-555-0100", "Clewiston", "FL",
			sql.NullString{String: DefaultVehicleClass, Valid: true},
			sql.NullString{String: DefaultLicenseType, Valid: true},
			[]byte(`["Tanker (N)"]`),
			sql.NullFloat64{Float64: 0.9, Valid: true},
			sub.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPostgresRepository(db, logger.NewTestLogger(t))
	require.NoError(t, repo.Save(context.Background(), sub))
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestPostgresRepository_Save_NonDriver(t *testing.T) {
	db, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sub := testSubmission()
	sub.Form = Form{Role: RoleShipper, FullName: "Ship Co", Email: "ops@ship.co", Phone: "1", City: "Tampa", State: "FL", Accept: true}
	sub.Score = nil

	mockDB.ExpectExec("INSERT INTO join_submissions").
		WithArgs(
			sub.ID, "shipper", "Ship Co", "ops@ship.co", "1", "Tampa", "FL",
			sql.NullString{}, sql.NullString{},
			[]byte(`[]`),
			sql.NullFloat64{},
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPostgresRepository(db, nil)
	require.NoError(t, repo.Save(context.Background(), sub))
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestPostgresRepository_Save_Error(t *testing.T) {
	db, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB.ExpectExec("INSERT INTO join_submissions").
		WillReturnError(stderrors.New("relation does not exist"))

	repo := NewPostgresRepository(db, nil)
	err = repo.Save(context.Background(), testSubmission())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relation does not exist")
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

// ==========================
// SES notifier
// ==========================

type MockSES struct {
	mock.Mock
}

func (m *MockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ses.SendEmailOutput), args.Error(1)
}

func TestSESNotifier_Notify(t *testing.T) {
	client := &MockSES{}
	client.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return *in.Source == DefaultFromEmail &&
			len(in.Destination.ToAddresses) == 1 &&
			in.Destination.ToAddresses[0] == DefaultTeamEmail &&
			*in.Message.Subject.Data == NotifySubject &&
			assert.Contains(t, *in.Message.Body.Text.Data, `"fullName": "Jane Roe"`)
	})).Return(&ses.SendEmailOutput{}, nil)

	n := NewSESNotifier(client, "", nil)
	require.NoError(t, n.Notify(context.Background(), testSubmission()))
	client.AssertExpectations(t)
}

func TestSESNotifier_Notify_Error(t *testing.T) {
	client := &MockSES{}
	client.On("SendEmail", mock.Anything, mock.Anything).Return(nil, stderrors.New("throttled"))

	n := NewSESNotifier(client, "team@murmax.test", []string{"a@murmax.test", "b@murmax.test"})
	err := n.Notify(context.Background(), testSubmission())

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotificationFail))
}
