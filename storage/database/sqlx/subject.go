package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/gradeportal/core/subject"
)

const subjectColumns = "id, name, description, created_at, updated_at"

type subjectRepository struct {
	db *sqlx.DB
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *sqlx.DB) *subjectRepository {
	return &subjectRepository{db: db}
}

func (repo subjectRepository) CreateSubject(ctx context.Context, s subject.Subject) (subject.Subject, error) {
	q := repo.db.Rebind(`
		INSERT INTO subjects (name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`)
	if err := repo.db.QueryRowxContext(ctx, q, s.Name, s.Description, s.CreatedAt, s.UpdatedAt).Scan(&s.ID); err != nil {
		return subject.Subject{}, trapErr(err, subject.ErrNotFound, "inserting subject")
	}
	return s, nil
}

func (repo subjectRepository) getSubject(ctx context.Context, where string, arg interface{}) (subject.Subject, error) {
	var s subject.Subject
	q := repo.db.Rebind("SELECT " + subjectColumns + " FROM subjects WHERE " + where)
	if err := repo.db.GetContext(ctx, &s, q, arg); err != nil {
		return subject.Subject{}, trapErr(err, subject.ErrNotFound, "selecting subject")
	}
	return s, nil
}

func (repo subjectRepository) GetSubjectByID(ctx context.Context, id int64) (subject.Subject, error) {
	return repo.getSubject(ctx, "id = ?", id)
}

func (repo subjectRepository) GetSubjectByName(ctx context.Context, name string) (subject.Subject, error) {
	return repo.getSubject(ctx, "name = ?", name)
}

func (repo subjectRepository) QuerySubjects(ctx context.Context) ([]subject.Subject, error) {
	subjects := make([]subject.Subject, 0)
	q := "SELECT " + subjectColumns + " FROM subjects ORDER BY name, id"
	if err := repo.db.SelectContext(ctx, &subjects, q); err != nil {
		return nil, trapErr(err, subject.ErrNotFound, "selecting subjects")
	}
	return subjects, nil
}

func (repo subjectRepository) UpdateSubject(ctx context.Context, s subject.Subject) (subject.Subject, error) {
	q := repo.db.Rebind("UPDATE subjects SET name = ?, description = ?, updated_at = ? WHERE id = ?")
	res, err := repo.db.ExecContext(ctx, q, s.Name, s.Description, s.UpdatedAt, s.ID)
	if err != nil {
		return subject.Subject{}, trapErr(err, subject.ErrNotFound, "updating subject")
	}
	if err = checkAffected(res, subject.ErrNotFound); err != nil {
		return subject.Subject{}, err
	}
	return s, nil
}

func (repo subjectRepository) DeleteSubject(ctx context.Context, id int64) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM subjects WHERE id = ?"), id)
	if err != nil {
		return trapErr(err, subject.ErrNotFound, "deleting subject")
	}
	return checkAffected(res, subject.ErrNotFound)
}

func (repo subjectRepository) CountSubjectGrades(ctx context.Context, id int64) (int, error) {
	return count(repo.db, "SELECT COUNT(*) FROM grades WHERE subject_id = ?", id)
}
