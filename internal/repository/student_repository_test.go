package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-retention-api/internal/models"
)

func studentRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "enrollment_no", "full_name", "department", "semester", "current_cgpa", "attendance_percent",
		"disciplinary_issues", "dropout_risk", "risk_reason", "ml_probability", "ml_confidence", "ml_last_updated",
		"counselor_notes", "problem_categories", "active", "created_at", "updated_at",
	}).AddRow(
		"stu-1", "EN-001", "Rahul Verma", "Science", 4, 4.5, 55.0,
		3, "HIGH", "Critical attendance shortage (55.0%)", 0.82, 0.9, now,
		"", "{academic_struggles}", true, now, now,
	)
}

func TestStudentRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, enrollment_no, full_name")).
		WithArgs("stu-1").
		WillReturnRows(studentRows())

	student, err := repo.FindByID(context.Background(), "stu-1")

	require.NoError(t, err)
	require.Equal(t, "EN-001", student.EnrollmentNo)
	require.Equal(t, models.RiskHigh, student.DropoutRisk)
	require.NotNil(t, student.MLProbability)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListAtRiskOrdersHighFirst(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE active = true AND dropout_risk IN ($1, $2)")).
		WithArgs(models.RiskHigh, models.RiskMedium).
		WillReturnRows(studentRows())

	students, err := repo.ListAtRisk(context.Background())

	require.NoError(t, err)
	require.Len(t, students, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateRiskFields(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	probability := 0.82
	confidence := 0.9
	updatedAt := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET dropout_risk = $2")).
		WithArgs("stu-1", models.RiskHigh, "Critical attendance shortage (55.0%)", &probability, &confidence, &updatedAt, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateRiskFields(context.Background(), models.RiskFieldsUpdate{
		StudentID:     "stu-1",
		DropoutRisk:   models.RiskHigh,
		RiskReason:    "Critical attendance shortage (55.0%)",
		MLProbability: &probability,
		MLConfidence:  &confidence,
		MLLastUpdated: &updatedAt,
	})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateProblemCategories(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET problem_categories = $2")).
		WithArgs("stu-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateProblemCategories(context.Background(), "stu-1", []string{"academic_struggles"})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistsByEnrollmentNo(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM students WHERE enrollment_no = $1")).
		WithArgs("EN-001").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByEnrollmentNo(context.Background(), "EN-001", "")
	require.NoError(t, err)
	require.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM students WHERE enrollment_no = $1 AND id <> $2")).
		WithArgs("EN-001", "stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err = repo.ExistsByEnrollmentNo(context.Background(), "EN-001", "stu-1")
	require.NoError(t, err)
	require.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}
