package grading

import "fmt"

// Grade bands for a scored answer. PassingGrade marks the boundary between
// a finalized attempt and one returned to the student for resubmission.
const (
	GradeNeedsImprovement = 1
	GradeAverage          = 2
	GradeGood             = 3
	GradeVeryGood         = 4
	GradeOutstanding      = 5

	PassingGrade = GradeGood
)

// GradeFor maps a similarity percentage onto a grade band. Thresholds are
// inclusive lower bounds checked highest-first.
func GradeFor(similarity float64) int {
	switch {
	case similarity >= 95:
		return GradeOutstanding
	case similarity >= 80:
		return GradeVeryGood
	case similarity >= 60:
		return GradeGood
	case similarity >= 40:
		return GradeAverage
	default:
		return GradeNeedsImprovement
	}
}

// GradeLabel returns the display name of a grade band.
func GradeLabel(grade int) string {
	switch grade {
	case GradeOutstanding:
		return "Outstanding"
	case GradeVeryGood:
		return "Very Good"
	case GradeGood:
		return "Good"
	case GradeAverage:
		return "Average"
	default:
		return "Needs Improvement"
	}
}

// RemarkFor produces the student-facing remark for a graded answer. The
// wording is part of the external contract; similarity is always rendered
// with two decimal places.
func RemarkFor(grade int, similarity float64) string {
	switch {
	case grade == GradeGood:
		return "Good! Try for better performance next time."
	case grade > GradeGood:
		return fmt.Sprintf("Auto-Graded: Excellent! (%.2f%%)", similarity)
	default:
		return fmt.Sprintf("Auto-Remark: Your answer was %.2f%% correct. Please review and improve it.", similarity)
	}
}
