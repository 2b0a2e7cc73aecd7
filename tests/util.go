// Package testutil holds the fixtures shared by the package tests.
package testutil

import (
	"context"
	"net/mail"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"github.com/trezcool/gradeportal/core"
	"github.com/trezcool/gradeportal/core/grade"
	"github.com/trezcool/gradeportal/core/student"
	"github.com/trezcool/gradeportal/core/subject"
	"github.com/trezcool/gradeportal/core/user"
	"github.com/trezcool/gradeportal/storage/database"
)

// NewConfig returns the configuration used by tests. It does not read the environment.
func NewConfig() *core.Config {
	return &core.Config{
		AppName:          "Grade Portal",
		Env:              "TEST",
		Build:            "test",
		TestMode:         true,
		SecretKey:        "test-secret-key",
		DefaultFromEmail: mail.Address{Name: "Grade Portal", Address: "noreply@test.local"},
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 24 * time.Hour,
			DisableReqLogs:            true,
		},
		Database: core.DatabaseConfig{Engine: database.EngineSQLite, Name: ":memory:"},
	}
}

// NewValidator returns a validator with all the app validations & translations registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

// PrepareDB returns a migrated in-memory SQLite database, closed at the end of the test.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	goose.SetLogger(goose.NopLogger())

	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

func CreateUser(t *testing.T, repo user.Repository, uname, pwd string, role user.Role, status user.Status) user.User {
	t.Helper()
	now := core.NowFunc()
	usr := user.User{
		Username:  uname,
		FirstName: "First" + uname,
		LastName:  "Last" + uname,
		Role:      role,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateStudent(t *testing.T, repo student.Repository, name, section string, userID *int64) student.Student {
	t.Helper()
	now := core.NowFunc()
	s, err := repo.CreateStudent(context.Background(), student.Student{
		Name:      name,
		Section:   section,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return s
}

func CreateSubject(t *testing.T, repo subject.Repository, name string) subject.Subject {
	t.Helper()
	now := core.NowFunc()
	s, err := repo.CreateSubject(context.Background(), subject.Subject{
		Name:        name,
		Description: "Default " + name + " course",
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return s
}

func CreateGrade(t *testing.T, repo grade.Repository, studentID, subjectID int64, value float64, dateAssigned ...time.Time) grade.Grade {
	t.Helper()
	now := core.NowFunc()
	date := core.Today()
	if len(dateAssigned) > 0 {
		date = dateAssigned[0]
	}
	g, err := repo.UpsertGrade(context.Background(), grade.Grade{
		StudentID:    studentID,
		SubjectID:    subjectID,
		Value:        value,
		DateAssigned: date,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateGrade() failed: %v", err)
	}
	return g
}

// Int64Ptr returns a pointer to i.
func Int64Ptr(i int64) *int64 { return &i }

// Float64Ptr returns a pointer to f.
func Float64Ptr(f float64) *float64 { return &f }
