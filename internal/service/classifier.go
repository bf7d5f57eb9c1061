package service

import (
	"context"
	"strings"

	"github.com/noah-isme/sma-retention-api/internal/models"
)

// ProblemClassifier turns free-text counselor notes into problem category
// tags. Implementations may call out to an external model; callers must treat
// failures as degradable and fall back to category-less matching.
type ProblemClassifier interface {
	Classify(ctx context.Context, notes string) (*models.ProblemAnalysis, error)
}

// categoryKeywords maps each problem category tag to the note phrases that
// indicate it.
var categoryKeywords = map[string][]string{
	"academic_struggles": {"grade", "exam", "fail", "subject", "backlog", "study", "academic"},
	"family_issues":      {"family", "parent", "divorce", "domestic", "sibling", "home"},
	"financial_problems": {"fee", "financial", "money", "loan", "scholarship", "tuition", "afford"},
	"health_concerns":    {"health", "illness", "sick", "hospital", "medical", "chronic"},
	"mental_health":      {"depress", "anxiet", "stress", "mental", "emotional", "overwhelm"},
	"bereavement":        {"death", "grief", "loss", "passed away", "bereave"},
	"social_isolation":   {"lonel", "isolat", "withdrawn", "no friends", "social"},
	"attendance_issues":  {"absent", "attendance", "late", "skip", "missing class"},
	"substance_abuse":    {"alcohol", "drug", "substance", "addict", "smoking"},
	"career_confusion":   {"career", "placement", "job", "direction", "future", "confus"},
}

// KeywordClassifier is a deterministic keyword-substring classifier. It is the
// default in-process implementation of ProblemClassifier.
type KeywordClassifier struct{}

// NewKeywordClassifier constructs a KeywordClassifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// Classify scans the notes for category keywords. Empty notes produce an
// empty analysis, never an error.
func (c *KeywordClassifier) Classify(_ context.Context, notes string) (*models.ProblemAnalysis, error) {
	trimmed := strings.TrimSpace(notes)
	if trimmed == "" {
		return &models.ProblemAnalysis{
			Categories: []string{},
			Summary:    "No issues documented",
		}, nil
	}

	lowered := strings.ToLower(trimmed)
	var categories []string
	for _, category := range categoryOrder {
		for _, keyword := range categoryKeywords[category] {
			if strings.Contains(lowered, keyword) {
				categories = append(categories, category)
				break
			}
		}
	}

	analysis := &models.ProblemAnalysis{
		Categories: categories,
		Summary:    "Keyword analysis of counselor notes",
		Confidence: 0.5,
	}
	if len(categories) > 0 {
		analysis.Confidence = 0.7
		analysis.Reasoning = "matched note keywords: " + strings.Join(categories, ", ")
	}
	return analysis, nil
}

// categoryOrder keeps classification output deterministic across runs.
var categoryOrder = []string{
	"academic_struggles",
	"family_issues",
	"financial_problems",
	"health_concerns",
	"mental_health",
	"bereavement",
	"social_isolation",
	"attendance_issues",
	"substance_abuse",
	"career_confusion",
}
