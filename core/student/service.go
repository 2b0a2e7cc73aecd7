package student

import (
	"context"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/gradeportal/core"
	"github.com/trezcool/gradeportal/core/user"
)

var (
	// errors
	ErrNotFound      = core.NewNotFoundError("student")
	ErrStudentExists = errors.New("a student with this name already exists in this section")
	ErrUserLinked    = errors.New("this user is already linked to a student")
	ErrUserNotFound  = errors.New("user not found")
	ErrHasGrades     = errors.New("student has grades and cannot be deleted")
)

type (
	Repository interface {
		// CreateStudent returns core.ErrUniqueViolation (wrapped) when (name, section) or user_id is taken.
		CreateStudent(ctx context.Context, s Student) (Student, error)
		GetStudentByID(ctx context.Context, id int64) (Student, error)
		GetStudentByUserID(ctx context.Context, userID int64) (Student, error)
		// QueryStudents applies AND between QueryFilter fields.
		// QueryFilter.Search does a case-insensitive "contains" match on Student.Name.
		// Results are ordered by name then id unless orderings are given.
		QueryStudents(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Student, error)
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		// DeleteStudent returns core.ErrForeignKeyViolation (wrapped) when grades reference the student.
		DeleteStudent(ctx context.Context, id int64) error
		CountStudentGrades(ctx context.Context, id int64) (int, error)
	}

	// UserFinder resolves the optional user linked to a student.
	UserFinder interface {
		GetUserByID(ctx context.Context, id int64) (user.User, error)
	}

	Service struct {
		repo  Repository
		users UserFinder
	}
)

func NewService(repo Repository, users UserFinder) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(users, "users"),
	).CheckAndPanic()
	return &Service{repo: repo, users: users}
}

// Create creates a new Student. `ns` must have been validated.
func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if ns.UserID != nil {
		if _, err := svc.users.GetUserByID(ctx, *ns.UserID); err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				return Student{}, core.NewValidationError(
					ErrUserNotFound,
					core.FieldError{Field: "user_id", Error: ErrUserNotFound.Error()},
				)
			}
			return Student{}, errors.Wrap(err, "finding linked user")
		}
	}

	now := core.NowFunc()
	s := Student{
		Name:      ns.Name,
		Section:   ns.Section,
		UserID:    ns.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s, err := svc.repo.CreateStudent(ctx, s)
	if err != nil {
		return Student{}, svc.translateErr(ctx, err, ns.UserID, "creating student")
	}
	return s, nil
}

func (svc *Service) GetByID(ctx context.Context, id int64) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

// GetByUserID returns the student record linked to the given user.
func (svc *Service) GetByUserID(ctx context.Context, userID int64) (Student, error) {
	return svc.repo.GetStudentByUserID(ctx, userID)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Student, error) {
	filter.Clean()
	return svc.repo.QueryStudents(ctx, filter, core.CleanOrderings(orderings, OrderingFields...)...)
}

// Update updates the name & section of a Student. `us` must have been validated.
func (svc *Service) Update(ctx context.Context, id int64, us UpdateStudent) (Student, error) {
	s, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	s.Name = us.Name
	s.Section = us.Section
	s.UpdatedAt = core.NowFunc()

	if s, err = svc.repo.UpdateStudent(ctx, s); err != nil {
		return Student{}, svc.translateErr(ctx, err, nil, "updating student")
	}
	return s, nil
}

// Delete deletes a Student. Students that have grades cannot be deleted.
func (svc *Service) Delete(ctx context.Context, id int64) error {
	if _, err := svc.repo.GetStudentByID(ctx, id); err != nil {
		return err
	}
	count, err := svc.repo.CountStudentGrades(ctx, id)
	if err != nil {
		return errors.Wrap(err, "counting student grades")
	}
	if count > 0 {
		return core.NewConflictError(ErrHasGrades)
	}
	if err = svc.repo.DeleteStudent(ctx, id); err != nil {
		if errors.Cause(err) == core.ErrForeignKeyViolation {
			return core.NewConflictError(ErrHasGrades)
		}
		return errors.Wrap(err, "deleting student")
	}
	return nil
}

func (svc *Service) translateErr(ctx context.Context, err error, userID *int64, msg string) error {
	if errors.Cause(err) != core.ErrUniqueViolation {
		return errors.Wrap(err, msg)
	}
	if userID != nil {
		if _, gErr := svc.repo.GetStudentByUserID(ctx, *userID); gErr == nil {
			return core.NewConflictError(ErrUserLinked, core.FieldError{Field: "user_id", Error: ErrUserLinked.Error()})
		}
	}
	return core.NewConflictError(ErrStudentExists, core.FieldError{Field: "name", Error: ErrStudentExists.Error()})
}
