package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-retention-api/internal/models"
	appErrors "github.com/noah-isme/sma-retention-api/pkg/errors"
)

// specializationKeywords drives mentor matching: a problem category matches a
// specialization when any of its keywords is a substring of the category tag.
var specializationKeywords = map[string][]string{
	"Academic Support":      {"academic", "study", "grade", "exam", "course", "backlog", "subject", "learning", "performance"},
	"Career Guidance":       {"career", "job", "placement", "interview", "resume", "future", "profession", "employment"},
	"Financial Guidance":    {"financial", "money", "fee", "loan", "scholarship", "budget", "economic", "tuition"},
	"Family Counseling":     {"family", "parent", "home", "sibling", "relationship", "domestic", "personal"},
	"Mental Health Support": {"mental", "stress", "anxiety", "depression", "emotional", "psychological"},
	"General Mentoring":     {"general", "overall", "guidance", "support", "help"},
}

const (
	matchScorePerCategory = 10
	matchScoreBaseline    = 5
)

type assignmentStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	UpdateProblemCategories(ctx context.Context, studentID string, categories []string) error
}

type mentorAssignmentRepository interface {
	ListWithLoad(ctx context.Context) ([]models.MentorWithLoad, error)
	FindByID(ctx context.Context, id string) (*models.Mentor, error)
	ActiveAssignment(ctx context.Context, studentID string) (*models.MentorAssignment, error)
	CountActiveAssignments(ctx context.Context, mentorID string) (int, error)
	Assign(ctx context.Context, studentID, mentorID string) (*models.MentorAssignment, error)
	ListAssignments(ctx context.Context, studentID string) ([]models.MentorAssignment, error)
}

type counselorAssignmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Counselor, error)
	ActiveAssignment(ctx context.Context, studentID string) (*models.CounselorAssignment, error)
	CountActiveAssignments(ctx context.Context, counselorID string) (int, error)
	Assign(ctx context.Context, studentID, counselorID string) (*models.CounselorAssignment, error)
}

// AssignmentService matches students to mentors and manages mentor and
// counselor assignment transitions.
type AssignmentService struct {
	students   assignmentStudentRepository
	mentors    mentorAssignmentRepository
	counselors counselorAssignmentRepository
	classifier ProblemClassifier
	logger     *zap.Logger
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(students assignmentStudentRepository, mentors mentorAssignmentRepository, counselors counselorAssignmentRepository, classifier ProblemClassifier, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		students:   students,
		mentors:    mentors,
		counselors: counselors,
		classifier: classifier,
		logger:     logger,
	}
}

// AutoAssignMentor picks the best-matching mentor with capacity and assigns
// the student to them. It returns (nil, nil) when the student has no
// counselor, already has an active mentor, or no mentor has capacity; callers
// treat all three as non-fatal no-ops.
func (s *AssignmentService) AutoAssignMentor(ctx context.Context, studentID string) (*models.MentorAssignment, error) {
	student, err := s.findStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	counselor, err := s.counselors.ActiveAssignment(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if counselor == nil {
		s.logger.Debug("auto-assign skipped, no counselor", zap.String("student_id", studentID))
		return nil, nil
	}

	existing, err := s.mentors.ActiveAssignment(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Debug("auto-assign skipped, mentor already active", zap.String("student_id", studentID))
		return nil, nil
	}

	candidates, err := s.candidateMentors(ctx)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		s.logger.Warn("auto-assign skipped, no mentor capacity", zap.String("student_id", studentID))
		return nil, nil
	}

	categories, err := s.problemCategories(ctx, student)
	if err != nil {
		// Classification is best effort; degrade to load-based selection.
		s.logger.Warn("problem classification failed", zap.String("student_id", studentID), zap.Error(err))
		categories = nil
	}

	var selected models.MentorWithLoad
	if len(categories) > 0 {
		matches := ScoreMentors(categories, candidates)
		if len(matches) > 0 && matches[0].MatchScore > 0 {
			selected = matches[0].MentorWithLoad
			s.logger.Info("mentor matched by specialization",
				zap.String("student_id", studentID),
				zap.String("mentor_id", selected.ID),
				zap.Int("match_score", matches[0].MatchScore),
				zap.Strings("matched_categories", matches[0].MatchedCategories),
			)
		}
	}
	if selected.ID == "" {
		selected = leastLoaded(candidates)
		s.logger.Info("mentor selected by load",
			zap.String("student_id", studentID),
			zap.String("mentor_id", selected.ID),
			zap.Int("current_load", selected.CurrentLoad),
		)
	}

	return s.mentors.Assign(ctx, studentID, selected.ID)
}

// AssignMentor assigns the student to the given mentor, superseding any
// active assignment. The mentor must exist and have capacity.
func (s *AssignmentService) AssignMentor(ctx context.Context, studentID, mentorID string) (*models.MentorAssignment, error) {
	if _, err := s.findStudent(ctx, studentID); err != nil {
		return nil, err
	}
	mentor, err := s.mentors.FindByID(ctx, mentorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor not found")
		}
		return nil, fmt.Errorf("load mentor: %w", err)
	}

	load, err := s.mentors.CountActiveAssignments(ctx, mentorID)
	if err != nil {
		return nil, err
	}
	if load >= mentor.MaxStudents {
		return nil, appErrors.ErrCapacityExceeded
	}

	assignment, err := s.mentors.Assign(ctx, studentID, mentorID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("mentor assigned",
		zap.String("student_id", studentID),
		zap.String("mentor_id", mentorID),
	)
	return assignment, nil
}

// AssignCounselor assigns the student to the given counselor with the same
// supersede semantics and a capacity check.
func (s *AssignmentService) AssignCounselor(ctx context.Context, studentID, counselorID string) (*models.CounselorAssignment, error) {
	if _, err := s.findStudent(ctx, studentID); err != nil {
		return nil, err
	}
	counselor, err := s.counselors.FindByID(ctx, counselorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "counselor not found")
		}
		return nil, fmt.Errorf("load counselor: %w", err)
	}

	load, err := s.counselors.CountActiveAssignments(ctx, counselorID)
	if err != nil {
		return nil, err
	}
	if load >= counselor.MaxStudents {
		return nil, appErrors.ErrCapacityExceeded
	}

	assignment, err := s.counselors.Assign(ctx, studentID, counselorID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("counselor assigned",
		zap.String("student_id", studentID),
		zap.String("counselor_id", counselorID),
	)
	return assignment, nil
}

// SuggestMentors returns the scored candidate list for a student without
// creating an assignment.
func (s *AssignmentService) SuggestMentors(ctx context.Context, studentID string) ([]models.MentorMatch, error) {
	student, err := s.findStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.candidateMentors(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.problemCategories(ctx, student)
	if err != nil {
		return nil, err
	}
	return ScoreMentors(categories, candidates), nil
}

// ListMentorAssignments returns the full assignment history for a student.
func (s *AssignmentService) ListMentorAssignments(ctx context.Context, studentID string) ([]models.MentorAssignment, error) {
	if _, err := s.findStudent(ctx, studentID); err != nil {
		return nil, err
	}
	return s.mentors.ListAssignments(ctx, studentID)
}

// problemCategories returns the student's cached categories, or classifies
// the counselor notes and persists the result before returning it.
func (s *AssignmentService) problemCategories(ctx context.Context, student *models.Student) ([]string, error) {
	if len(student.ProblemCategories) > 0 {
		return student.ProblemCategories, nil
	}
	if s.classifier == nil || strings.TrimSpace(student.CounselorNotes) == "" {
		return nil, nil
	}

	analysis, err := s.classifier.Classify(ctx, student.CounselorNotes)
	if err != nil {
		return nil, fmt.Errorf("classify counselor notes: %w", err)
	}
	if len(analysis.Categories) == 0 {
		return nil, nil
	}
	if err := s.students.UpdateProblemCategories(ctx, student.ID, analysis.Categories); err != nil {
		return nil, fmt.Errorf("persist problem categories: %w", err)
	}
	return analysis.Categories, nil
}

func (s *AssignmentService) candidateMentors(ctx context.Context) ([]models.MentorWithLoad, error) {
	mentors, err := s.mentors.ListWithLoad(ctx)
	if err != nil {
		return nil, err
	}
	candidates := make([]models.MentorWithLoad, 0, len(mentors))
	for _, mentor := range mentors {
		if mentor.HasCapacity() {
			candidates = append(candidates, mentor)
		}
	}
	return candidates, nil
}

func (s *AssignmentService) findStudent(ctx context.Context, studentID string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, fmt.Errorf("load student: %w", err)
	}
	return student, nil
}

// ScoreMentors scores each mentor by keyword overlap between the problem
// categories and the mentor's specialization: +10 per matched category, +5
// baseline for mentors with no matches. The result is sorted best-first with
// ties broken by lower current load.
func ScoreMentors(categories []string, mentors []models.MentorWithLoad) []models.MentorMatch {
	matches := make([]models.MentorMatch, 0, len(mentors))
	for _, mentor := range mentors {
		score := 0
		var matched []string
		keywords := specializationKeywords[mentor.Specialization]
		for _, category := range categories {
			lowered := strings.ToLower(category)
			for _, keyword := range keywords {
				if strings.Contains(lowered, keyword) {
					score += matchScorePerCategory
					matched = append(matched, category)
					break
				}
			}
		}
		if score == 0 {
			score = matchScoreBaseline
		}
		matches = append(matches, models.MentorMatch{
			MentorWithLoad:    mentor,
			MatchScore:        score,
			MatchedCategories: matched,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].MatchScore != matches[j].MatchScore {
			return matches[i].MatchScore > matches[j].MatchScore
		}
		return matches[i].CurrentLoad < matches[j].CurrentLoad
	})
	return matches
}

func leastLoaded(mentors []models.MentorWithLoad) models.MentorWithLoad {
	selected := mentors[0]
	for _, mentor := range mentors[1:] {
		if mentor.CurrentLoad < selected.CurrentLoad {
			selected = mentor
		}
	}
	return selected
}
