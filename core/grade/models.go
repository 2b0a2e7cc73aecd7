package grade

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gradeportal/core"
)

const (
	MinValue = 0.0
	MaxValue = 100.0
	PassMark = 60.0

	StatusNA               = "N/A"
	StatusExcellent        = "Excellent"
	StatusGood             = "Good"
	StatusNeedsImprovement = "Needs Improvement"
	StatusPoor             = "Poor"
)

// Grade links one student and one subject to a score. There is at most one Grade per (student, subject).
type Grade struct {
	ID           int64     `json:"id" db:"id"`
	StudentID    int64     `json:"student_id" db:"student_id"`
	SubjectID    int64     `json:"subject_id" db:"subject_id"`
	Value        float64   `json:"grade_value" db:"grade_value"`
	DateAssigned time.Time `json:"date_assigned" db:"date_assigned"` // UTC date
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Detail is a lightweight projection of a Grade with its student & subject names.
type Detail struct {
	ID           int64     `json:"id" db:"id"`
	StudentID    int64     `json:"student_id" db:"student_id"`
	StudentName  string    `json:"student_name" db:"student_name"`
	SubjectID    int64     `json:"subject_id" db:"subject_id"`
	SubjectName  string    `json:"subject_name" db:"subject_name"`
	Value        float64   `json:"grade_value" db:"grade_value"`
	DateAssigned time.Time `json:"date_assigned" db:"date_assigned"`
}

func (d Detail) Passed() bool { return d.Value >= PassMark }

type ReportCard struct {
	StudentID     int64    `json:"student_id"`
	StudentName   string   `json:"student_name"`
	Section       string   `json:"section"`
	Grades        []Detail `json:"grades"`
	TotalGrades   int      `json:"total_grades"`
	PassedGrades  int      `json:"passed_grades"`
	FailedGrades  int      `json:"failed_grades"`
	AverageGrade  float64  `json:"average_grade"`
	OverallStatus string   `json:"overall_status"`
}

// NewReportCard aggregates the given grades: counts, average rounded to 2 decimals & status band.
func NewReportCard(grades []Detail) ReportCard {
	if grades == nil {
		grades = []Detail{}
	}
	rc := ReportCard{
		Grades:        grades,
		TotalGrades:   len(grades),
		OverallStatus: StatusNA,
	}
	if rc.TotalGrades == 0 {
		return rc
	}

	var sum float64
	for _, g := range grades {
		sum += g.Value
		if g.Passed() {
			rc.PassedGrades++
		} else {
			rc.FailedGrades++
		}
	}
	rc.AverageGrade = core.Round(sum/float64(rc.TotalGrades), 2)
	rc.OverallStatus = overallStatus(float64(rc.PassedGrades) / float64(rc.TotalGrades) * 100)
	return rc
}

func overallStatus(passPercentage float64) string {
	switch {
	case passPercentage >= 70:
		return StatusExcellent
	case passPercentage >= 50:
		return StatusGood
	case passPercentage >= 30:
		return StatusNeedsImprovement
	default:
		return StatusPoor
	}
}

// NewGrade contains information needed to assign a grade.
type NewGrade struct {
	StudentID int64    `json:"student_id" validate:"required,gt=0"`
	SubjectID int64    `json:"subject_id" validate:"required,gt=0"`
	Value     *float64 `json:"grade_value" validate:"required"`
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	if err := validate.Struct(ng); err != nil {
		return err
	}
	return checkValue(*ng.Value)
}

// UpdateGrade defines what information may be provided to modify an existing Grade.
type UpdateGrade struct {
	Value *float64 `json:"grade_value" validate:"required"`
}

func (ug *UpdateGrade) Validate(validate *validator.Validate) error {
	if err := validate.Struct(ug); err != nil {
		return err
	}
	return checkValue(*ug.Value)
}

func checkValue(v float64) error {
	if v < MinValue || v > MaxValue {
		return core.NewValidationError(ErrInvalidValue, core.FieldError{Field: "grade_value", Error: ErrInvalidValue.Error()})
	}
	return nil
}

type QueryFilter struct {
	StudentID int64
	SubjectID int64
}
