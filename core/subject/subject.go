package subject

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/gradeportal/core"
)

var (
	// errors
	ErrNotFound      = core.NewNotFoundError("subject")
	ErrSubjectExists = errors.New("a subject with this name already exists")
	ErrHasGrades     = errors.New("subject has grades and cannot be deleted")
)

type Subject struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// NewSubject contains information needed to create or update a Subject.
type NewSubject struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=255"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Description = core.CleanString(ns.Description)
	return validate.Struct(ns)
}

type (
	Repository interface {
		// CreateSubject returns core.ErrUniqueViolation (wrapped) when the name is taken.
		CreateSubject(ctx context.Context, s Subject) (Subject, error)
		GetSubjectByID(ctx context.Context, id int64) (Subject, error)
		GetSubjectByName(ctx context.Context, name string) (Subject, error)
		// QuerySubjects returns all subjects ordered by name.
		QuerySubjects(ctx context.Context) ([]Subject, error)
		UpdateSubject(ctx context.Context, s Subject) (Subject, error)
		// DeleteSubject returns core.ErrForeignKeyViolation (wrapped) when grades reference the subject.
		DeleteSubject(ctx context.Context, id int64) error
		CountSubjectGrades(ctx context.Context, id int64) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	vala.BeginValidation().Validate(vala.IsNotNil(repo, "repo")).CheckAndPanic()
	return &Service{repo: repo}
}

// Create creates a new Subject. `ns` must have been validated.
func (svc *Service) Create(ctx context.Context, ns NewSubject) (Subject, error) {
	now := core.NowFunc()
	s := Subject{
		Name:        ns.Name,
		Description: ns.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s, err := svc.repo.CreateSubject(ctx, s)
	if err != nil {
		return Subject{}, translateErr(err, "creating subject")
	}
	return s, nil
}

// GetOrCreate returns the subject with the given name, creating it if it does not exist.
func (svc *Service) GetOrCreate(ctx context.Context, ns NewSubject) (Subject, bool, error) {
	s, err := svc.repo.GetSubjectByName(ctx, ns.Name)
	if err == nil {
		return s, false, nil
	}
	if errors.Cause(err) != ErrNotFound {
		return Subject{}, false, errors.Wrap(err, "finding subject by name")
	}
	s, err = svc.Create(ctx, ns)
	return s, err == nil, err
}

func (svc *Service) GetByID(ctx context.Context, id int64) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx)
}

// Update updates a Subject. `ns` must have been validated.
func (svc *Service) Update(ctx context.Context, id int64, ns NewSubject) (Subject, error) {
	s, err := svc.repo.GetSubjectByID(ctx, id)
	if err != nil {
		return Subject{}, err
	}
	s.Name = ns.Name
	s.Description = ns.Description
	s.UpdatedAt = core.NowFunc()

	if s, err = svc.repo.UpdateSubject(ctx, s); err != nil {
		return Subject{}, translateErr(err, "updating subject")
	}
	return s, nil
}

// Delete deletes a Subject. Subjects that have grades cannot be deleted.
func (svc *Service) Delete(ctx context.Context, id int64) error {
	if _, err := svc.repo.GetSubjectByID(ctx, id); err != nil {
		return err
	}
	count, err := svc.repo.CountSubjectGrades(ctx, id)
	if err != nil {
		return errors.Wrap(err, "counting subject grades")
	}
	if count > 0 {
		return core.NewConflictError(ErrHasGrades)
	}
	if err = svc.repo.DeleteSubject(ctx, id); err != nil {
		if errors.Cause(err) == core.ErrForeignKeyViolation {
			return core.NewConflictError(ErrHasGrades)
		}
		return errors.Wrap(err, "deleting subject")
	}
	return nil
}

func translateErr(err error, msg string) error {
	if errors.Cause(err) == core.ErrUniqueViolation {
		return core.NewConflictError(ErrSubjectExists, core.FieldError{Field: "name", Error: ErrSubjectExists.Error()})
	}
	return errors.Wrap(err, msg)
}
