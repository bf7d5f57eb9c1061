package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-retention-api/internal/models"
	appErrors "github.com/noah-isme/sma-retention-api/pkg/errors"
)

type mockStudentRepo struct {
	items           map[string]*models.Student
	enrollmentIndex map[string]string
	listResult      []models.Student
	listTotal       int
}

func newMockStudentRepo(students ...*models.Student) *mockStudentRepo {
	repo := &mockStudentRepo{
		items:           make(map[string]*models.Student),
		enrollmentIndex: make(map[string]string),
	}
	for _, student := range students {
		cp := *student
		repo.items[student.ID] = &cp
		repo.enrollmentIndex[student.EnrollmentNo] = student.ID
	}
	return repo
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	return m.listResult, m.listTotal, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if student, ok := m.items[id]; ok {
		cp := *student
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsByEnrollmentNo(ctx context.Context, enrollmentNo, excludeID string) (bool, error) {
	if owner, ok := m.enrollmentIndex[enrollmentNo]; ok {
		if excludeID == "" || owner != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = "stu-generated"
	}
	cp := *student
	m.items[student.ID] = &cp
	m.enrollmentIndex[student.EnrollmentNo] = student.ID
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	cp := *student
	m.items[student.ID] = &cp
	return nil
}

type mockAttendanceRepo struct {
	records []models.AttendanceRecord
}

func (m *mockAttendanceRepo) ListByStudent(ctx context.Context, studentID string) ([]models.AttendanceRecord, error) {
	return m.records, nil
}

func (m *mockAttendanceRepo) Create(ctx context.Context, record *models.AttendanceRecord) error {
	m.records = append(m.records, *record)
	return nil
}

type mockAssessmentRepo struct {
	assessments []models.Assessment
}

func (m *mockAssessmentRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Assessment, error) {
	return m.assessments, nil
}

func (m *mockAssessmentRepo) Create(ctx context.Context, assessment *models.Assessment) error {
	m.assessments = append(m.assessments, *assessment)
	return nil
}

type recordingRefresher struct {
	refreshed []string
	err       error
}

func (m *recordingRefresher) RefreshRiskProfile(ctx context.Context, studentID string) (*models.RiskProfile, error) {
	m.refreshed = append(m.refreshed, studentID)
	if m.err != nil {
		return nil, m.err
	}
	return &models.RiskProfile{StudentID: studentID}, nil
}

func newStudentServiceForTest(repo *mockStudentRepo, risk *recordingRefresher) (*StudentService, *mockAttendanceRepo, *mockAssessmentRepo) {
	attendance := &mockAttendanceRepo{}
	assessments := &mockAssessmentRepo{}
	return NewStudentService(repo, attendance, assessments, risk, nil, nil), attendance, assessments
}

func TestStudentCreateScoresImmediately(t *testing.T) {
	repo := newMockStudentRepo()
	risk := &recordingRefresher{}
	svc, _, _ := newStudentServiceForTest(repo, risk)

	student, err := svc.Create(context.Background(), CreateStudentRequest{
		EnrollmentNo:      "EN-001",
		FullName:          "Rahul Verma",
		Department:        "Science",
		Semester:          4,
		CurrentCGPA:       6.5,
		AttendancePercent: 80,
	})

	require.NoError(t, err)
	assert.Equal(t, models.RiskUnknown, student.DropoutRisk, "risk starts UNKNOWN until scored")
	assert.True(t, student.Active)
	assert.Equal(t, []string{student.ID}, risk.refreshed)
}

func TestStudentCreateDuplicateEnrollment(t *testing.T) {
	repo := newMockStudentRepo(&models.Student{ID: "stu-1", EnrollmentNo: "EN-001"})
	svc, _, _ := newStudentServiceForTest(repo, &recordingRefresher{})

	_, err := svc.Create(context.Background(), CreateStudentRequest{
		EnrollmentNo:      "EN-001",
		FullName:          "Other",
		Department:        "Science",
		Semester:          1,
		AttendancePercent: 90,
	})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestStudentCreateValidation(t *testing.T) {
	svc, _, _ := newStudentServiceForTest(newMockStudentRepo(), &recordingRefresher{})

	_, err := svc.Create(context.Background(), CreateStudentRequest{
		EnrollmentNo: "EN-001",
		FullName:     "X",
		Department:   "Science",
		Semester:     13,
	})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentUpdateClearsCategoriesOnNotesChange(t *testing.T) {
	repo := newMockStudentRepo(&models.Student{
		ID:                "stu-1",
		EnrollmentNo:      "EN-001",
		FullName:          "Rahul Verma",
		Department:        "Science",
		Semester:          4,
		CounselorNotes:    "old notes",
		ProblemCategories: []string{"academic_struggles"},
	})
	risk := &recordingRefresher{}
	svc, _, _ := newStudentServiceForTest(repo, risk)

	updated, err := svc.Update(context.Background(), "stu-1", UpdateStudentRequest{
		EnrollmentNo:      "EN-001",
		FullName:          "Rahul Verma",
		Department:        "Science",
		Semester:          4,
		AttendancePercent: 80,
		CounselorNotes:    "new notes about family issues",
		Active:            true,
	})

	require.NoError(t, err)
	assert.Empty(t, updated.ProblemCategories, "changed notes invalidate cached categories")
	assert.Equal(t, []string{"stu-1"}, risk.refreshed)
}

func TestStudentUpdateKeepsCategoriesWhenNotesUnchanged(t *testing.T) {
	repo := newMockStudentRepo(&models.Student{
		ID:                "stu-1",
		EnrollmentNo:      "EN-001",
		FullName:          "Rahul Verma",
		Department:        "Science",
		Semester:          4,
		CounselorNotes:    "same notes",
		ProblemCategories: []string{"academic_struggles"},
	})
	svc, _, _ := newStudentServiceForTest(repo, &recordingRefresher{})

	updated, err := svc.Update(context.Background(), "stu-1", UpdateStudentRequest{
		EnrollmentNo:      "EN-001",
		FullName:          "Rahul Verma",
		Department:        "Science",
		Semester:          5,
		AttendancePercent: 80,
		CounselorNotes:    "same notes",
		Active:            true,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"academic_struggles"}, []string(updated.ProblemCategories))
}

func TestRecordAttendanceNormalizesStatus(t *testing.T) {
	repo := newMockStudentRepo(&models.Student{ID: "stu-1", EnrollmentNo: "EN-001"})
	risk := &recordingRefresher{}
	svc, attendance, _ := newStudentServiceForTest(repo, risk)

	record, err := svc.RecordAttendance(context.Background(), RecordAttendanceRequest{
		StudentID: "stu-1",
		Date:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:    "present",
	})

	require.NoError(t, err)
	assert.Equal(t, models.AttendancePresent, record.Status)
	assert.Len(t, attendance.records, 1)
	assert.Equal(t, []string{"stu-1"}, risk.refreshed)
}

func TestRecordAttendanceInvalidStatus(t *testing.T) {
	repo := newMockStudentRepo(&models.Student{ID: "stu-1", EnrollmentNo: "EN-001"})
	svc, _, _ := newStudentServiceForTest(repo, &recordingRefresher{})

	_, err := svc.RecordAttendance(context.Background(), RecordAttendanceRequest{
		StudentID: "stu-1",
		Date:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:    "SLEEPING",
	})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRecordAssessmentRejectsMarksAboveTotal(t *testing.T) {
	repo := newMockStudentRepo(&models.Student{ID: "stu-1", EnrollmentNo: "EN-001"})
	svc, _, _ := newStudentServiceForTest(repo, &recordingRefresher{})

	_, err := svc.RecordAssessment(context.Background(), RecordAssessmentRequest{
		StudentID:     "stu-1",
		Subject:       "Mathematics",
		ExamType:      "UNIT_TEST",
		MarksObtained: 110,
		TotalMarks:    100,
		Date:          time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRecordAssessmentTriggersRescore(t *testing.T) {
	repo := newMockStudentRepo(&models.Student{ID: "stu-1", EnrollmentNo: "EN-001"})
	risk := &recordingRefresher{}
	svc, _, assessments := newStudentServiceForTest(repo, risk)

	_, err := svc.RecordAssessment(context.Background(), RecordAssessmentRequest{
		StudentID:     "stu-1",
		Subject:       "Mathematics",
		ExamType:      "UNIT_TEST",
		MarksObtained: 25,
		TotalMarks:    100,
		Date:          time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Len(t, assessments.assessments, 1)
	assert.Equal(t, []string{"stu-1"}, risk.refreshed)
}

func TestRecordAssessmentRiskRefreshFailureIsNonFatal(t *testing.T) {
	repo := newMockStudentRepo(&models.Student{ID: "stu-1", EnrollmentNo: "EN-001"})
	risk := &recordingRefresher{err: errors.New("scorer down")}
	svc, _, _ := newStudentServiceForTest(repo, risk)

	_, err := svc.RecordAssessment(context.Background(), RecordAssessmentRequest{
		StudentID:     "stu-1",
		Subject:       "Mathematics",
		ExamType:      "UNIT_TEST",
		MarksObtained: 25,
		TotalMarks:    100,
		Date:          time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err, "risk refresh failure never fails the write")
}

func TestStudentListPaginationDefaults(t *testing.T) {
	repo := newMockStudentRepo()
	repo.listResult = []models.Student{{ID: "stu-1"}}
	repo.listTotal = 1
	svc, _, _ := newStudentServiceForTest(repo, nil)

	students, pagination, err := svc.List(context.Background(), models.StudentFilter{})

	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 1, pagination.TotalCount)
}
