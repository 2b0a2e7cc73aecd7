package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/gradeportal/core"
)

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

var AllRoles = []Role{RoleAdmin, RoleTeacher, RoleStudent}

func (r Role) IsValid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusDeclined Status = "DECLINED"
)

type User struct {
	ID            int64      `json:"id" db:"id"`
	Username      string     `json:"username" db:"username"`
	PasswordHash  []byte     `json:"-" db:"password_hash"`
	FirstName     string     `json:"first_name" db:"first_name"`
	LastName      string     `json:"last_name" db:"last_name"`
	Email         string     `json:"email,omitempty" db:"email"`
	Role          Role       `json:"role" db:"role"`
	Status        Status     `json:"status" db:"status"`
	AssignedClass string     `json:"assigned_class,omitempty" db:"assigned_class"` // teachers only
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`                   // UTC
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`                   // UTC
	LastLogin     *time.Time `json:"last_login" db:"last_login"`                   // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) FullName() string {
	return core.CleanString(u.FirstName + " " + u.LastName)
}

func (u *User) IsAdmin() bool    { return u.Role == RoleAdmin }
func (u *User) IsTeacher() bool  { return u.Role == RoleTeacher }
func (u *User) IsStudent() bool  { return u.Role == RoleStudent }
func (u *User) IsApproved() bool { return u.Status == StatusApproved }

// Approve moves a PENDING user to APPROVED. APPROVED and DECLINED are terminal.
func (u *User) Approve() error {
	return u.transition(StatusApproved)
}

// Decline moves a PENDING user to DECLINED. APPROVED and DECLINED are terminal.
func (u *User) Decline() error {
	return u.transition(StatusDeclined)
}

func (u *User) transition(to Status) error {
	if u.Status != StatusPending {
		return core.NewConflictError(
			ErrInvalidTransition,
			core.FieldError{Field: "status", Error: "user is already " + string(u.Status)},
		)
	}
	u.Status = to
	return nil
}

// NewUser contains information needed to sign up a new User.
type NewUser struct {
	Username  string `json:"username" validate:"required,min=3,max=50,alphanum_"`
	Password  string `json:"password" validate:"required,max=100"`
	FirstName string `json:"first_name" validate:"required,max=50"`
	LastName  string `json:"last_name" validate:"required,max=50"`
	Email     string `json:"email" validate:"omitempty,email"`
	Role      Role   `json:"role" validate:"required,oneof=ADMIN TEACHER STUDENT"`
}

// Validate cleans and validates the NewUser. Usernames are case-sensitive: only surrounding whitespace is trimmed.
func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Username = core.CleanString(nu.Username)
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = Role(core.CleanString(string(nu.Role)))
	return validate.Struct(nu)
}

type AssignClass struct {
	ClassName string `json:"class_name" validate:"required,max=50"`
}

func (ac *AssignClass) Validate(validate *validator.Validate) error {
	ac.ClassName = core.CleanString(ac.ClassName)
	return validate.Struct(ac)
}

type QueryFilter struct {
	Roles    []Role
	Statuses []Status
}
