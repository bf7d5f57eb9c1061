package service

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-retention-api/internal/models"
)

// MLPredictor invokes the external dropout predictor with derived inputs.
type MLPredictor interface {
	Predict(ctx context.Context, attendance, cgpa float64, failures, issues int) (*models.MLPrediction, error)
}

// ProcessPredictor shells out to a predictor process and parses its labeled
// text output. The context deadline bounds the whole invocation.
type ProcessPredictor struct {
	command string
	args    []string
}

// NewProcessPredictor constructs a predictor around the configured command.
func NewProcessPredictor(command string, args []string) *ProcessPredictor {
	return &ProcessPredictor{command: command, args: args}
}

// Predict runs the predictor process and parses its stdout.
func (p *ProcessPredictor) Predict(ctx context.Context, attendance, cgpa float64, failures, issues int) (*models.MLPrediction, error) {
	args := append([]string{}, p.args...)
	args = append(args,
		"--attendance", strconv.FormatFloat(attendance, 'f', -1, 64),
		"--cgpa", strconv.FormatFloat(cgpa, 'f', -1, 64),
		"--failures", strconv.Itoa(failures),
		"--issues", strconv.Itoa(issues),
	)

	cmd := exec.CommandContext(ctx, p.command, args...)
	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("predictor timed out: %w", ctx.Err())
		}
		return nil, fmt.Errorf("run predictor: %w", err)
	}

	prediction, err := parsePredictorOutput(string(output))
	if err != nil {
		return nil, err
	}
	return prediction, nil
}

var (
	percentPattern   = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)
	riskLevelPattern = regexp.MustCompile(`Risk Level:\s*(\w+)`)
	labelPattern     = regexp.MustCompile(`Prediction:\s*(.+)`)
)

// parsePredictorOutput extracts probability, confidence, risk level and label
// from lines such as "Dropout Probability: 81.50%".
func parsePredictorOutput(stdout string) (*models.MLPrediction, error) {
	var (
		probability *float64
		confidence  *float64
		riskLevel   string
		label       string
	)

	for _, line := range strings.Split(stdout, "\n") {
		switch {
		case strings.Contains(line, "Dropout Probability:"):
			if m := percentPattern.FindStringSubmatch(line); m != nil {
				if v, err := strconv.ParseFloat(m[1], 64); err == nil {
					v /= 100
					probability = &v
				}
			}
		case strings.Contains(line, "Risk Level:"):
			if m := riskLevelPattern.FindStringSubmatch(line); m != nil {
				riskLevel = m[1]
			}
		case strings.Contains(line, "Prediction:"):
			if m := labelPattern.FindStringSubmatch(line); m != nil {
				label = strings.TrimSpace(m[1])
			}
		case strings.Contains(line, "Confidence:"):
			if m := percentPattern.FindStringSubmatch(line); m != nil {
				if v, err := strconv.ParseFloat(m[1], 64); err == nil {
					v /= 100
					confidence = &v
				}
			}
		}
	}

	if probability == nil {
		return nil, fmt.Errorf("predictor output missing probability")
	}
	if confidence == nil {
		confidence = probability
	}

	return &models.MLPrediction{
		Probability: *probability,
		Confidence:  *confidence,
		RiskLevel:   riskLevel,
		Prediction:  label,
	}, nil
}

// MLService derives predictor inputs from a student and fails closed: any
// execution or parse failure yields a nil prediction, never an error, so the
// risk pipeline can proceed rule-based-only.
type MLService struct {
	predictor MLPredictor
	timeout   time.Duration
	ttl       time.Duration
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewMLService constructs the ML bridge.
func NewMLService(predictor MLPredictor, timeout, ttl time.Duration, metrics *MetricsService, logger *zap.Logger) *MLService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MLService{predictor: predictor, timeout: timeout, ttl: ttl, metrics: metrics, logger: logger}
}

// Predict returns the ML prediction for a student, or nil when the predictor
// is unavailable, times out, or emits unparseable output.
func (s *MLService) Predict(ctx context.Context, student *models.Student, assessments []models.Assessment) *models.MLPrediction {
	if s.predictor == nil {
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if s.metrics != nil {
		s.metrics.RecordMLCall()
	}

	prediction, err := s.predictor.Predict(callCtx,
		student.AttendancePercent,
		student.CurrentCGPA,
		CountFailedAssessments(assessments),
		student.DisciplinaryIssues,
	)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordMLFailure()
		}
		s.logger.Warn("ml prediction skipped",
			zap.String("student_id", student.ID),
			zap.Error(err),
		)
		return nil
	}

	prediction.Timestamp = time.Now().UTC()
	return prediction
}

// NeedsRefresh reports whether a cached ML result is stale.
func (s *MLService) NeedsRefresh(lastUpdated *time.Time, now time.Time) bool {
	if lastUpdated == nil {
		return true
	}
	return lastUpdated.Before(now.Add(-s.ttl))
}
