package sqlxrepos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/gradeportal/core/grade"
)

const gradeColumns = "id, student_id, subject_id, grade_value, date_assigned, created_at, updated_at"

type gradeRepository struct {
	db *sqlx.DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *sqlx.DB) *gradeRepository {
	return &gradeRepository{db: db}
}

func (repo gradeRepository) UpsertGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	q := repo.db.Rebind(`
		INSERT INTO grades (student_id, subject_id, grade_value, date_assigned, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (student_id, subject_id) DO UPDATE
		SET grade_value = excluded.grade_value, date_assigned = excluded.date_assigned, updated_at = excluded.updated_at
		RETURNING id`)

	var id int64
	err := repo.db.QueryRowxContext(
		ctx, q, g.StudentID, g.SubjectID, g.Value, g.DateAssigned, g.CreatedAt, g.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return grade.Grade{}, trapErr(err, grade.ErrNotFound, "upserting grade")
	}
	// created_at is kept when an existing grade is overwritten
	return repo.GetGradeByID(ctx, id)
}

func (repo gradeRepository) GetGradeByID(ctx context.Context, id int64) (grade.Grade, error) {
	var g grade.Grade
	q := repo.db.Rebind("SELECT " + gradeColumns + " FROM grades WHERE id = ?")
	if err := repo.db.GetContext(ctx, &g, q, id); err != nil {
		return grade.Grade{}, trapErr(err, grade.ErrNotFound, "selecting grade")
	}
	return g, nil
}

func (repo gradeRepository) UpdateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	q := repo.db.Rebind("UPDATE grades SET grade_value = ?, date_assigned = ?, updated_at = ? WHERE id = ?")
	res, err := repo.db.ExecContext(ctx, q, g.Value, g.DateAssigned, g.UpdatedAt, g.ID)
	if err != nil {
		return grade.Grade{}, trapErr(err, grade.ErrNotFound, "updating grade")
	}
	if err = checkAffected(res, grade.ErrNotFound); err != nil {
		return grade.Grade{}, err
	}
	return g, nil
}

func (repo gradeRepository) DeleteGrade(ctx context.Context, id int64) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM grades WHERE id = ?"), id)
	if err != nil {
		return trapErr(err, grade.ErrNotFound, "deleting grade")
	}
	return checkAffected(res, grade.ErrNotFound)
}

func (repo gradeRepository) QueryGradeDetails(ctx context.Context, filter grade.QueryFilter) ([]grade.Detail, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.StudentID != 0 {
		conds = append(conds, "g.student_id = ?")
		args = append(args, filter.StudentID)
	}
	if filter.SubjectID != 0 {
		conds = append(conds, "g.subject_id = ?")
		args = append(args, filter.SubjectID)
	}

	q := `
		SELECT g.id, g.student_id, st.name AS student_name, g.subject_id, sb.name AS subject_name,
		       g.grade_value, g.date_assigned
		FROM grades g
		JOIN students st ON st.id = g.student_id
		JOIN subjects sb ON sb.id = g.subject_id`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY g.date_assigned DESC, g.id DESC"

	details := make([]grade.Detail, 0)
	if err := repo.db.SelectContext(ctx, &details, repo.db.Rebind(q), args...); err != nil {
		return nil, trapErr(err, grade.ErrNotFound, "selecting grades")
	}
	return details, nil
}
