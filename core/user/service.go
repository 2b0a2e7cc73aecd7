package user

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/gradeportal/core"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("user")
	ErrUsernameExists     = errors.New("a user with this username already exists")
	ErrInvalidTransition  = errors.New("user is not pending approval")
	ErrNotTeacher         = errors.New("only teachers can be assigned to a class")
	ErrInvalidCredentials = core.NewUnauthenticatedError("invalid username or password")
	ErrNotApproved        = core.NewUnauthenticatedError("account not approved")
)

type (
	Repository interface {
		// CreateUser returns core.ErrUniqueViolation (wrapped) when the username is taken.
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id int64) (User, error)
		// GetUserByUsername does an exact, case-sensitive match.
		GetUserByUsername(ctx context.Context, username string) (User, error)
		// QueryUsers applies AND between QueryFilter fields and OR within each field.
		// Results are ordered by last name, first name then id.
		QueryUsers(ctx context.Context, filter QueryFilter) ([]User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		DeleteUser(ctx context.Context, id int64) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

func NewService(repo Repository, mailSvc core.EmailService) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(mailSvc, "mailSvc"),
	).CheckAndPanic()
	return &Service{repo: repo, mailSvc: mailSvc}
}

// Signup creates a PENDING user. `nu` must have been validated.
func (svc *Service) Signup(ctx context.Context, nu NewUser) (User, error) {
	return svc.create(ctx, nu, StatusPending)
}

func (svc *Service) create(ctx context.Context, nu NewUser, status Status) (User, error) {
	now := core.NowFunc()
	usr := User{
		Username:  nu.Username,
		FirstName: nu.FirstName,
		LastName:  nu.LastName,
		Email:     nu.Email,
		Role:      nu.Role,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}

	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		if errors.Cause(err) == core.ErrUniqueViolation {
			return User{}, core.NewConflictError(
				ErrUsernameExists,
				core.FieldError{Field: "username", Error: ErrUsernameExists.Error()},
			)
		}
		return User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

// Authenticate checks the user's credentials. Only APPROVED users can authenticate.
func (svc *Service) Authenticate(ctx context.Context, username, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByUsername(ctx, core.CleanString(username))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by username")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !usr.IsApproved() {
		return User{}, ErrNotApproved
	}

	now := core.NowFunc()
	usr.LastLogin = &now
	usr, err = svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "setting last login")
	}
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id int64) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsername(ctx, core.CleanString(uname))
}

func (svc *Service) ListTeachers(ctx context.Context) ([]User, error) {
	return svc.repo.QueryUsers(ctx, QueryFilter{Roles: []Role{RoleTeacher}, Statuses: []Status{StatusApproved}})
}

func (svc *Service) ListPending(ctx context.Context) ([]User, error) {
	return svc.repo.QueryUsers(ctx, QueryFilter{Statuses: []Status{StatusPending}})
}

func (svc *Service) ListApprovedStudents(ctx context.Context) ([]User, error) {
	return svc.repo.QueryUsers(ctx, QueryFilter{Roles: []Role{RoleStudent}, Statuses: []Status{StatusApproved}})
}

func (svc *Service) Approve(ctx context.Context, id int64) (User, error) {
	return svc.setStatus(ctx, id, (*User).Approve, "account_approved", "Account approved")
}

func (svc *Service) Decline(ctx context.Context, id int64) (User, error) {
	return svc.setStatus(ctx, id, (*User).Decline, "account_declined", "Account declined")
}

func (svc *Service) setStatus(ctx context.Context, id int64, transition func(*User) error, tmpl, subject string) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if err = transition(&usr); err != nil {
		return User{}, err
	}
	usr.UpdatedAt = core.NowFunc()
	if usr, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return User{}, errors.Wrap(err, "updating user status")
	}
	svc.notify(usr, tmpl, subject)
	return usr, nil
}

func (svc *Service) notify(usr User, tmpl, subject string) {
	if usr.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName(), Address: usr.Email}},
		Subject:      subject,
		TemplateName: tmpl,
		TemplateData: usr,
	})
}

// AssignClass sets the class a teacher is in charge of.
func (svc *Service) AssignClass(ctx context.Context, id int64, ac AssignClass) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if !usr.IsTeacher() {
		return User{}, core.NewValidationError(ErrNotTeacher, core.FieldError{Field: "role", Error: ErrNotTeacher.Error()})
	}
	usr.AssignedClass = ac.ClassName
	usr.UpdatedAt = core.NowFunc()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) Delete(ctx context.Context, id int64) error {
	return svc.repo.DeleteUser(ctx, id)
}

// SetPassword replaces the password of the user with the given username.
func (svc *Service) SetPassword(ctx context.Context, uname, pwd string) error {
	usr, err := svc.GetByUsername(ctx, uname)
	if err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = core.NowFunc()
	_, err = svc.repo.UpdateUser(ctx, usr)
	return err
}

// AddUser creates an APPROVED user or, when the username exists, updates its role, names,
// email & password and approves it.
func (svc *Service) AddUser(ctx context.Context, nu NewUser) (User, error) {
	usr, err := svc.GetByUsername(ctx, nu.Username)
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			return User{}, err
		}
		return svc.create(ctx, nu, StatusApproved)
	}

	usr.Role = nu.Role
	usr.Status = StatusApproved
	if nu.FirstName != "" {
		usr.FirstName = nu.FirstName
	}
	if nu.LastName != "" {
		usr.LastName = nu.LastName
	}
	if nu.Email != "" {
		usr.Email = nu.Email
	}
	if err = usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = core.NowFunc()
	if usr, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return User{}, errors.Wrap(err, fmt.Sprintf("updating user %q", nu.Username))
	}
	return usr, nil
}
