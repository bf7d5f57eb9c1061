package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-retention-api/internal/models"
	appErrors "github.com/noah-isme/sma-retention-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByEnrollmentNo(ctx context.Context, enrollmentNo string, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
}

type attendanceRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.AttendanceRecord, error)
	Create(ctx context.Context, record *models.AttendanceRecord) error
}

type assessmentRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Assessment, error)
	Create(ctx context.Context, assessment *models.Assessment) error
}

// CreateStudentRequest holds payload for registering students.
type CreateStudentRequest struct {
	EnrollmentNo       string  `json:"enrollment_no" validate:"required"`
	FullName           string  `json:"full_name" validate:"required"`
	Department         string  `json:"department" validate:"required"`
	Semester           int     `json:"semester" validate:"required,min=1,max=12"`
	CurrentCGPA        float64 `json:"current_cgpa" validate:"min=0,max=10"`
	AttendancePercent  float64 `json:"attendance_percent" validate:"min=0,max=100"`
	DisciplinaryIssues int     `json:"disciplinary_issues" validate:"min=0"`
	CounselorNotes     string  `json:"counselor_notes"`
}

// UpdateStudentRequest holds payload for updating students.
type UpdateStudentRequest struct {
	EnrollmentNo       string  `json:"enrollment_no" validate:"required"`
	FullName           string  `json:"full_name" validate:"required"`
	Department         string  `json:"department" validate:"required"`
	Semester           int     `json:"semester" validate:"required,min=1,max=12"`
	CurrentCGPA        float64 `json:"current_cgpa" validate:"min=0,max=10"`
	AttendancePercent  float64 `json:"attendance_percent" validate:"min=0,max=100"`
	DisciplinaryIssues int     `json:"disciplinary_issues" validate:"min=0"`
	CounselorNotes     string  `json:"counselor_notes"`
	Active             bool    `json:"active"`
}

// RecordAttendanceRequest appends one attendance entry.
type RecordAttendanceRequest struct {
	StudentID string    `json:"student_id" validate:"required"`
	Date      time.Time `json:"date" validate:"required"`
	Status    string    `json:"status" validate:"required"`
	Subject   string    `json:"subject"`
}

// RecordAssessmentRequest appends one assessment entry.
type RecordAssessmentRequest struct {
	StudentID     string    `json:"student_id" validate:"required"`
	Subject       string    `json:"subject" validate:"required"`
	ExamType      string    `json:"exam_type" validate:"required"`
	MarksObtained float64   `json:"marks_obtained" validate:"min=0"`
	TotalMarks    float64   `json:"total_marks" validate:"required,gt=0"`
	Date          time.Time `json:"date" validate:"required"`
}

// StudentService handles student records and their attendance and assessment
// history. Data changes trigger a best-effort risk refresh.
type StudentService struct {
	repo        studentRepository
	attendance  attendanceRepository
	assessments assessmentRepository
	risk        riskRefresher
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, attendance attendanceRepository, assessments assessmentRepository, risk riskRefresher, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		repo:        repo,
		attendance:  attendance,
		assessments: assessments,
		risk:        risk,
		validator:   validate,
		logger:      logger,
	}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return students, pagination, nil
}

// Get returns a student by id.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student and scores them immediately.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	exists, err := s.repo.ExistsByEnrollmentNo(ctx, req.EnrollmentNo, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate enrollment no")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "enrollment number already used")
	}
	student := &models.Student{
		EnrollmentNo:       req.EnrollmentNo,
		FullName:           req.FullName,
		Department:         req.Department,
		Semester:           req.Semester,
		CurrentCGPA:        req.CurrentCGPA,
		AttendancePercent:  req.AttendancePercent,
		DisciplinaryIssues: req.DisciplinaryIssues,
		CounselorNotes:     req.CounselorNotes,
		DropoutRisk:        models.RiskUnknown,
		Active:             true,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.refreshRisk(ctx, student.ID)
	return student, nil
}

// Update modifies an existing student record and rescores it.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsByEnrollmentNo(ctx, req.EnrollmentNo, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate enrollment no")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "enrollment number already used")
	}

	notesChanged := student.CounselorNotes != req.CounselorNotes
	student.EnrollmentNo = req.EnrollmentNo
	student.FullName = req.FullName
	student.Department = req.Department
	student.Semester = req.Semester
	student.CurrentCGPA = req.CurrentCGPA
	student.AttendancePercent = req.AttendancePercent
	student.DisciplinaryIssues = req.DisciplinaryIssues
	student.CounselorNotes = req.CounselorNotes
	student.Active = req.Active
	if notesChanged {
		// Stale categories would poison mentor matching.
		student.ProblemCategories = nil
	}
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	s.refreshRisk(ctx, id)
	return student, nil
}

// RecordAttendance appends an attendance entry and rescores the student.
func (s *StudentService) RecordAttendance(ctx context.Context, req RecordAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	status := models.AttendanceStatus(strings.ToUpper(req.Status))
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid attendance status")
	}
	if _, err := s.Get(ctx, req.StudentID); err != nil {
		return nil, err
	}
	record := &models.AttendanceRecord{
		StudentID: req.StudentID,
		Date:      req.Date,
		Status:    status,
		Subject:   req.Subject,
	}
	if err := s.attendance.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	s.refreshRisk(ctx, req.StudentID)
	return record, nil
}

// ListAttendance returns a student's attendance history, newest first.
func (s *StudentService) ListAttendance(ctx context.Context, studentID string) ([]models.AttendanceRecord, error) {
	if _, err := s.Get(ctx, studentID); err != nil {
		return nil, err
	}
	return s.attendance.ListByStudent(ctx, studentID)
}

// RecordAssessment appends an assessment entry and rescores the student.
func (s *StudentService) RecordAssessment(ctx context.Context, req RecordAssessmentRequest) (*models.Assessment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assessment payload")
	}
	if req.MarksObtained > req.TotalMarks {
		return nil, appErrors.Clone(appErrors.ErrValidation, "marks obtained cannot exceed total marks")
	}
	if _, err := s.Get(ctx, req.StudentID); err != nil {
		return nil, err
	}
	assessment := &models.Assessment{
		StudentID:     req.StudentID,
		Subject:       req.Subject,
		ExamType:      req.ExamType,
		MarksObtained: req.MarksObtained,
		TotalMarks:    req.TotalMarks,
		Date:          req.Date,
	}
	if err := s.assessments.Create(ctx, assessment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record assessment")
	}
	s.refreshRisk(ctx, req.StudentID)
	return assessment, nil
}

// ListAssessments returns a student's assessment history, newest first.
func (s *StudentService) ListAssessments(ctx context.Context, studentID string) ([]models.Assessment, error) {
	if _, err := s.Get(ctx, studentID); err != nil {
		return nil, err
	}
	return s.assessments.ListByStudent(ctx, studentID)
}

// refreshRisk rescoring is best effort; a scoring failure never fails the
// data write that triggered it.
func (s *StudentService) refreshRisk(ctx context.Context, studentID string) {
	if s.risk == nil {
		return
	}
	if _, err := s.risk.RefreshRiskProfile(ctx, studentID); err != nil {
		s.logger.Warn("risk refresh failed", zap.String("student_id", studentID), zap.Error(err))
	}
}
