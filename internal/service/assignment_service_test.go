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

type mockAssignmentStudentRepo struct {
	student           *models.Student
	persistedCategory [][]string
}

func (m *mockAssignmentStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if m.student == nil || m.student.ID != id {
		return nil, sql.ErrNoRows
	}
	cp := *m.student
	return &cp, nil
}

func (m *mockAssignmentStudentRepo) UpdateProblemCategories(ctx context.Context, studentID string, categories []string) error {
	m.persistedCategory = append(m.persistedCategory, categories)
	return nil
}

type mockMentorRepo struct {
	mentors    []models.MentorWithLoad
	active     *models.MentorAssignment
	history    []models.MentorAssignment
	assigned   []string
	assignment *models.MentorAssignment
}

func (m *mockMentorRepo) ListWithLoad(ctx context.Context) ([]models.MentorWithLoad, error) {
	return m.mentors, nil
}

func (m *mockMentorRepo) FindByID(ctx context.Context, id string) (*models.Mentor, error) {
	for _, mentor := range m.mentors {
		if mentor.ID == id {
			cp := mentor.Mentor
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockMentorRepo) ActiveAssignment(ctx context.Context, studentID string) (*models.MentorAssignment, error) {
	return m.active, nil
}

func (m *mockMentorRepo) CountActiveAssignments(ctx context.Context, mentorID string) (int, error) {
	for _, mentor := range m.mentors {
		if mentor.ID == mentorID {
			return mentor.CurrentLoad, nil
		}
	}
	return 0, nil
}

func (m *mockMentorRepo) Assign(ctx context.Context, studentID, mentorID string) (*models.MentorAssignment, error) {
	m.assigned = append(m.assigned, mentorID)
	if m.assignment != nil {
		return m.assignment, nil
	}
	return &models.MentorAssignment{
		ID:         "assignment-1",
		StudentID:  studentID,
		MentorID:   mentorID,
		Status:     models.AssignmentActive,
		AssignedAt: time.Now(),
	}, nil
}

func (m *mockMentorRepo) ListAssignments(ctx context.Context, studentID string) ([]models.MentorAssignment, error) {
	return m.history, nil
}

type mockCounselorRepo struct {
	counselor *models.Counselor
	active    *models.CounselorAssignment
	load      int
	assigned  []string
}

func (m *mockCounselorRepo) FindByID(ctx context.Context, id string) (*models.Counselor, error) {
	if m.counselor == nil || m.counselor.ID != id {
		return nil, sql.ErrNoRows
	}
	cp := *m.counselor
	return &cp, nil
}

func (m *mockCounselorRepo) ActiveAssignment(ctx context.Context, studentID string) (*models.CounselorAssignment, error) {
	return m.active, nil
}

func (m *mockCounselorRepo) CountActiveAssignments(ctx context.Context, counselorID string) (int, error) {
	return m.load, nil
}

func (m *mockCounselorRepo) Assign(ctx context.Context, studentID, counselorID string) (*models.CounselorAssignment, error) {
	m.assigned = append(m.assigned, counselorID)
	return &models.CounselorAssignment{
		ID:          "c-assignment-1",
		StudentID:   studentID,
		CounselorID: counselorID,
		Status:      models.AssignmentActive,
	}, nil
}

type failingClassifier struct{}

func (failingClassifier) Classify(ctx context.Context, notes string) (*models.ProblemAnalysis, error) {
	return nil, errors.New("model unavailable")
}

func mentorWithLoad(id, specialization string, load, max int) models.MentorWithLoad {
	return models.MentorWithLoad{
		Mentor: models.Mentor{
			ID:             id,
			FullName:       "Mentor " + id,
			Specialization: specialization,
			MaxStudents:    max,
			Active:         true,
		},
		CurrentLoad: load,
	}
}

func TestScoreMentorsSpecializationMatching(t *testing.T) {
	mentors := []models.MentorWithLoad{
		mentorWithLoad("m-academic", "Academic Support", 3, 10),
		mentorWithLoad("m-career", "Career Guidance", 1, 10),
		mentorWithLoad("m-general", "General Mentoring", 0, 10),
	}

	matches := ScoreMentors([]string{"academic_struggles", "career_confusion"}, mentors)

	require.Len(t, matches, 3)
	// Each specialist matches one category (+10); General Mentoring matches
	// none and keeps the +5 baseline.
	assert.Equal(t, "m-career", matches[0].ID, "equal scores break ties by lower load")
	assert.Equal(t, 10, matches[0].MatchScore)
	assert.Equal(t, []string{"career_confusion"}, matches[0].MatchedCategories)
	assert.Equal(t, "m-academic", matches[1].ID)
	assert.Equal(t, 10, matches[1].MatchScore)
	assert.Equal(t, "m-general", matches[2].ID)
	assert.Equal(t, 5, matches[2].MatchScore)
}

func TestScoreMentorsMultipleCategoryMatches(t *testing.T) {
	mentors := []models.MentorWithLoad{
		mentorWithLoad("m-1", "Academic Support", 0, 10),
	}

	matches := ScoreMentors([]string{"academic_struggles", "attendance_issues", "academic_probation"}, mentors)

	require.Len(t, matches, 1)
	// academic_struggles and academic_probation both contain "academic".
	assert.Equal(t, 20, matches[0].MatchScore)
	assert.Equal(t, []string{"academic_struggles", "academic_probation"}, matches[0].MatchedCategories)
}

func TestAutoAssignMentorRequiresCounselor(t *testing.T) {
	students := &mockAssignmentStudentRepo{student: &models.Student{ID: "stu-1"}}
	mentors := &mockMentorRepo{mentors: []models.MentorWithLoad{mentorWithLoad("m-1", "Academic Support", 0, 10)}}
	svc := NewAssignmentService(students, mentors, &mockCounselorRepo{}, NewKeywordClassifier(), nil)

	assignment, err := svc.AutoAssignMentor(context.Background(), "stu-1")

	require.NoError(t, err)
	assert.Nil(t, assignment)
	assert.Empty(t, mentors.assigned)
}

func TestAutoAssignMentorSkipsWhenMentorActive(t *testing.T) {
	students := &mockAssignmentStudentRepo{student: &models.Student{ID: "stu-1"}}
	mentors := &mockMentorRepo{
		mentors: []models.MentorWithLoad{mentorWithLoad("m-1", "Academic Support", 0, 10)},
		active:  &models.MentorAssignment{ID: "existing", StudentID: "stu-1", MentorID: "m-1", Status: models.AssignmentActive},
	}
	counselors := &mockCounselorRepo{active: &models.CounselorAssignment{ID: "ca-1", StudentID: "stu-1"}}
	svc := NewAssignmentService(students, mentors, counselors, NewKeywordClassifier(), nil)

	assignment, err := svc.AutoAssignMentor(context.Background(), "stu-1")

	require.NoError(t, err)
	assert.Nil(t, assignment)
	assert.Empty(t, mentors.assigned)
}

func TestAutoAssignMentorMatchesBySpecialization(t *testing.T) {
	students := &mockAssignmentStudentRepo{student: &models.Student{
		ID:             "stu-1",
		CounselorNotes: "failing exams and worried about grades",
	}}
	mentors := &mockMentorRepo{mentors: []models.MentorWithLoad{
		mentorWithLoad("m-general", "General Mentoring", 0, 10),
		mentorWithLoad("m-academic", "Academic Support", 5, 10),
	}}
	counselors := &mockCounselorRepo{active: &models.CounselorAssignment{ID: "ca-1", StudentID: "stu-1"}}
	svc := NewAssignmentService(students, mentors, counselors, NewKeywordClassifier(), nil)

	assignment, err := svc.AutoAssignMentor(context.Background(), "stu-1")

	require.NoError(t, err)
	require.NotNil(t, assignment)
	assert.Equal(t, []string{"m-academic"}, mentors.assigned, "specialization beats lower load")
	require.Len(t, students.persistedCategory, 1)
	assert.Contains(t, students.persistedCategory[0], "academic_struggles")
}

func TestAutoAssignMentorFallsBackToLeastLoaded(t *testing.T) {
	students := &mockAssignmentStudentRepo{student: &models.Student{ID: "stu-1"}}
	mentors := &mockMentorRepo{mentors: []models.MentorWithLoad{
		mentorWithLoad("m-busy", "Academic Support", 8, 10),
		mentorWithLoad("m-idle", "Career Guidance", 2, 10),
	}}
	counselors := &mockCounselorRepo{active: &models.CounselorAssignment{ID: "ca-1", StudentID: "stu-1"}}
	svc := NewAssignmentService(students, mentors, counselors, NewKeywordClassifier(), nil)

	assignment, err := svc.AutoAssignMentor(context.Background(), "stu-1")

	require.NoError(t, err)
	require.NotNil(t, assignment)
	assert.Equal(t, []string{"m-idle"}, mentors.assigned)
}

func TestAutoAssignMentorDegradesOnClassifierFailure(t *testing.T) {
	students := &mockAssignmentStudentRepo{student: &models.Student{
		ID:             "stu-1",
		CounselorNotes: "failing exams",
	}}
	mentors := &mockMentorRepo{mentors: []models.MentorWithLoad{
		mentorWithLoad("m-1", "Academic Support", 4, 10),
		mentorWithLoad("m-2", "Career Guidance", 1, 10),
	}}
	counselors := &mockCounselorRepo{active: &models.CounselorAssignment{ID: "ca-1", StudentID: "stu-1"}}
	svc := NewAssignmentService(students, mentors, counselors, failingClassifier{}, nil)

	assignment, err := svc.AutoAssignMentor(context.Background(), "stu-1")

	require.NoError(t, err)
	require.NotNil(t, assignment)
	assert.Equal(t, []string{"m-2"}, mentors.assigned, "classifier failure degrades to load-based selection")
}

func TestAutoAssignMentorNoCapacity(t *testing.T) {
	students := &mockAssignmentStudentRepo{student: &models.Student{ID: "stu-1"}}
	mentors := &mockMentorRepo{mentors: []models.MentorWithLoad{
		mentorWithLoad("m-full", "Academic Support", 10, 10),
	}}
	counselors := &mockCounselorRepo{active: &models.CounselorAssignment{ID: "ca-1", StudentID: "stu-1"}}
	svc := NewAssignmentService(students, mentors, counselors, NewKeywordClassifier(), nil)

	assignment, err := svc.AutoAssignMentor(context.Background(), "stu-1")

	require.NoError(t, err)
	assert.Nil(t, assignment)
}

func TestAssignMentorCapacityExceeded(t *testing.T) {
	students := &mockAssignmentStudentRepo{student: &models.Student{ID: "stu-1"}}
	mentors := &mockMentorRepo{mentors: []models.MentorWithLoad{
		mentorWithLoad("m-full", "Academic Support", 10, 10),
	}}
	svc := NewAssignmentService(students, mentors, &mockCounselorRepo{}, nil, nil)

	_, err := svc.AssignMentor(context.Background(), "stu-1", "m-full")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrCapacityExceeded.Code, appErrors.FromError(err).Code)
}

func TestAssignMentorNotFound(t *testing.T) {
	students := &mockAssignmentStudentRepo{student: &models.Student{ID: "stu-1"}}
	svc := NewAssignmentService(students, &mockMentorRepo{}, &mockCounselorRepo{}, nil, nil)

	_, err := svc.AssignMentor(context.Background(), "stu-1", "missing")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAssignCounselorSucceeds(t *testing.T) {
	students := &mockAssignmentStudentRepo{student: &models.Student{ID: "stu-1"}}
	counselors := &mockCounselorRepo{
		counselor: &models.Counselor{ID: "c-1", MaxStudents: 5},
		load:      4,
	}
	svc := NewAssignmentService(students, &mockMentorRepo{}, counselors, nil, nil)

	assignment, err := svc.AssignCounselor(context.Background(), "stu-1", "c-1")

	require.NoError(t, err)
	assert.Equal(t, "c-1", assignment.CounselorID)
}

func TestAssignCounselorCapacityExceeded(t *testing.T) {
	students := &mockAssignmentStudentRepo{student: &models.Student{ID: "stu-1"}}
	counselors := &mockCounselorRepo{
		counselor: &models.Counselor{ID: "c-1", MaxStudents: 5},
		load:      5,
	}
	svc := NewAssignmentService(students, &mockMentorRepo{}, counselors, nil, nil)

	_, err := svc.AssignCounselor(context.Background(), "stu-1", "c-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrCapacityExceeded.Code, appErrors.FromError(err).Code)
}

func TestSuggestMentorsUsesCachedCategories(t *testing.T) {
	students := &mockAssignmentStudentRepo{student: &models.Student{
		ID:                "stu-1",
		ProblemCategories: []string{"financial_problems"},
	}}
	mentors := &mockMentorRepo{mentors: []models.MentorWithLoad{
		mentorWithLoad("m-fin", "Financial Guidance", 0, 10),
		mentorWithLoad("m-gen", "General Mentoring", 0, 10),
	}}
	svc := NewAssignmentService(students, mentors, &mockCounselorRepo{}, NewKeywordClassifier(), nil)

	matches, err := svc.SuggestMentors(context.Background(), "stu-1")

	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "m-fin", matches[0].ID)
	assert.Equal(t, 10, matches[0].MatchScore)
	assert.Empty(t, students.persistedCategory, "cached categories skip classification")
}
