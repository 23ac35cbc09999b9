// Package grading labels produce images with a quality grade. The real
// classifier does not exist yet; HeuristicGrader stands in for it behind the
// Grader interface so the marketplace never depends on how grades are made.
package grading

import (
	"crypto/sha256"
	"encoding/binary"
)

// Report is the outcome of grading one produce image.
type Report struct {
	Grade          string `json:"grade"`
	Confidence     int    `json:"confidence"`
	Defects        string `json:"defects"`
	FreshnessScore int    `json:"freshness_score"`
}

// Grader assigns a quality grade to raw image bytes.
type Grader interface {
	Grade(image []byte) (Report, error)
}

var (
	grades      = []string{"Premium", "A", "B", "C"}
	confidences = []int{95, 88, 75, 60}
	defects     = []string{"None", "Minor spots", "Small bruises", "Color variations"}
)

// HeuristicGrader derives a grade from a digest of the image bytes. The same
// image always gets the same grade, which keeps listings stable across
// retries and makes the stub testable.
type HeuristicGrader struct{}

func NewHeuristicGrader() *HeuristicGrader {
	return &HeuristicGrader{}
}

func (g *HeuristicGrader) Grade(image []byte) (Report, error) {
	sum := sha256.Sum256(image)
	seed := binary.BigEndian.Uint64(sum[:8])

	idx := int(seed % uint64(len(grades)))
	return Report{
		Grade:          grades[idx],
		Confidence:     confidences[idx],
		Defects:        defects[int(seed>>8)%len(defects)],
		FreshnessScore: 70 + int(seed>>16)%31,
	}, nil
}

// FixedGrader always returns the same report. Test double.
type FixedGrader struct {
	Report Report
}

func (g *FixedGrader) Grade([]byte) (Report, error) {
	return g.Report, nil
}
