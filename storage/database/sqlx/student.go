package sqlxrepos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/gradeportal/core"
	"github.com/trezcool/gradeportal/core/student"
)

const studentColumns = "id, name, section, user_id, created_at, updated_at"

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	q := repo.db.Rebind(`
		INSERT INTO students (name, section, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`)
	err := repo.db.QueryRowxContext(ctx, q, s.Name, s.Section, s.UserID, s.CreatedAt, s.UpdatedAt).Scan(&s.ID)
	if err != nil {
		return student.Student{}, trapErr(err, student.ErrNotFound, "inserting student")
	}
	return s, nil
}

func (repo studentRepository) getStudent(ctx context.Context, where string, arg interface{}) (student.Student, error) {
	var s student.Student
	q := repo.db.Rebind("SELECT " + studentColumns + " FROM students WHERE " + where)
	if err := repo.db.GetContext(ctx, &s, q, arg); err != nil {
		return student.Student{}, trapErr(err, student.ErrNotFound, "selecting student")
	}
	return s, nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id int64) (student.Student, error) {
	return repo.getStudent(ctx, "id = ?", id)
}

func (repo studentRepository) GetStudentByUserID(ctx context.Context, userID int64) (student.Student, error) {
	return repo.getStudent(ctx, "user_id = ?", userID)
}

func (repo studentRepository) QueryStudents(ctx context.Context, filter student.QueryFilter, orderings ...core.DBOrdering) ([]student.Student, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Search != "" {
		conds = append(conds, `LOWER(name) LIKE ? ESCAPE '\'`)
		args = append(args, containsPattern(filter.Search))
	}
	if filter.Section != "" {
		conds = append(conds, "section = ?")
		args = append(args, filter.Section)
	}

	q := "SELECT " + studentColumns + " FROM students"
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	if len(orderings) > 0 {
		q += orderBy(orderings, "id ASC")
	} else {
		q += orderBy(nil, "name ASC", "id ASC")
	}

	students := make([]student.Student, 0)
	if err := repo.db.SelectContext(ctx, &students, repo.db.Rebind(q), args...); err != nil {
		return nil, trapErr(err, student.ErrNotFound, "selecting students")
	}
	return students, nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	q := repo.db.Rebind("UPDATE students SET name = ?, section = ?, user_id = ?, updated_at = ? WHERE id = ?")
	res, err := repo.db.ExecContext(ctx, q, s.Name, s.Section, s.UserID, s.UpdatedAt, s.ID)
	if err != nil {
		return student.Student{}, trapErr(err, student.ErrNotFound, "updating student")
	}
	if err = checkAffected(res, student.ErrNotFound); err != nil {
		return student.Student{}, err
	}
	return s, nil
}

func (repo studentRepository) DeleteStudent(ctx context.Context, id int64) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM students WHERE id = ?"), id)
	if err != nil {
		return trapErr(err, student.ErrNotFound, "deleting student")
	}
	return checkAffected(res, student.ErrNotFound)
}

func (repo studentRepository) CountStudentGrades(ctx context.Context, id int64) (int, error) {
	return count(repo.db, "SELECT COUNT(*) FROM grades WHERE student_id = ?", id)
}
