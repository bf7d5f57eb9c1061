// Command predictor is a reference implementation of the dropout predictor
// protocol. It accepts the same flags the API passes to the real model and
// prints the labeled output the ML bridge parses. Useful for local development
// when the trained model is not available:
//
//	ML_PREDICTOR_COMMAND=go ML_PREDICTOR_ARGS="run ./scripts/predictor" ./api-gateway
package main

import (
	"flag"
	"fmt"
)

func main() {
	attendance := flag.Float64("attendance", 100, "attendance percentage")
	cgpa := flag.Float64("cgpa", 10, "current CGPA on a 10-point scale")
	failures := flag.Int("failures", 0, "failed assessment count")
	issues := flag.Int("issues", 0, "disciplinary issue count")
	flag.Parse()

	probability := estimate(*attendance, *cgpa, *failures, *issues)

	level := "LOW"
	label := "Likely to continue"
	switch {
	case probability >= 0.7:
		level = "HIGH"
		label = "Likely to drop out"
	case probability >= 0.4:
		level = "MEDIUM"
		label = "At risk of dropping out"
	}

	// Confidence grows with distance from the 0.5 decision boundary.
	confidence := 0.5 + (probability-0.5)*(probability-0.5)*2
	if confidence > 0.99 {
		confidence = 0.99
	}

	fmt.Printf("Dropout Probability: %.2f%%\n", probability*100)
	fmt.Printf("Confidence: %.2f%%\n", confidence*100)
	fmt.Printf("Risk Level: %s\n", level)
	fmt.Printf("Prediction: %s\n", label)
}

// estimate is a logistic-flavored stand-in for the trained model. Attendance
// and CGPA dominate, failures and disciplinary issues push the score up.
func estimate(attendance, cgpa float64, failures, issues int) float64 {
	score := 0.0
	score += (100 - attendance) / 100 * 0.45
	score += (10 - cgpa) / 10 * 0.35
	score += float64(failures) * 0.05
	score += float64(issues) * 0.04

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}
