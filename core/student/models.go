package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gradeportal/core"
)

type Student struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Section   string    `json:"section" db:"section"`
	UserID    *int64    `json:"user_id" db:"user_id"` // weak reference to user.User
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsOwnedBy reports whether the student record is linked to the given user.
func (s Student) IsOwnedBy(userID int64) bool {
	return s.UserID != nil && *s.UserID == userID
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	Name    string `json:"name" validate:"required,max=100"`
	Section string `json:"section" validate:"required,max=50"`
	UserID  *int64 `json:"user_id" validate:"omitempty,gt=0"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Section = core.CleanString(ns.Section)
	return validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
type UpdateStudent struct {
	Name    string `json:"name" validate:"required,max=100"`
	Section string `json:"section" validate:"required,max=50"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.Name = core.CleanString(us.Name)
	us.Section = core.CleanString(us.Section)
	return validate.Struct(us)
}

type QueryFilter struct {
	Search  string `query:"search"` // case-insensitive match on Name
	Section string `query:"section"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Section = core.CleanString(qf.Section)
}

// OrderingFields are the fields students can be ordered by.
var OrderingFields = []string{"id", "name", "section", "created_at"}
