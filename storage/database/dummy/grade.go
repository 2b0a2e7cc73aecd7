package dummydb

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/gradeportal/core"
	"github.com/trezcool/gradeportal/core/grade"
)

type gradeRepository struct {
	db *DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *DB) *gradeRepository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) UpsertGrade(_ context.Context, g grade.Grade) (grade.Grade, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	_, studentOK := repo.db.students[g.StudentID]
	_, subjectOK := repo.db.subjects[g.SubjectID]
	if !studentOK || !subjectOK {
		return grade.Grade{}, errors.Wrap(core.ErrForeignKeyViolation, "upserting grade")
	}

	for id, existing := range repo.db.grades {
		if existing.StudentID == g.StudentID && existing.SubjectID == g.SubjectID {
			existing.Value = g.Value
			existing.DateAssigned = g.DateAssigned
			existing.UpdatedAt = g.UpdatedAt
			repo.db.grades[id] = existing
			return existing, nil
		}
	}
	g.ID = repo.db.nextPK()
	repo.db.grades[g.ID] = g
	return g, nil
}

func (repo *gradeRepository) GetGradeByID(_ context.Context, id int64) (grade.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if g, ok := repo.db.grades[id]; ok {
		return g, nil
	}
	return grade.Grade{}, grade.ErrNotFound
}

func (repo *gradeRepository) UpdateGrade(_ context.Context, g grade.Grade) (grade.Grade, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.grades[g.ID]; !ok {
		return grade.Grade{}, grade.ErrNotFound
	}
	repo.db.grades[g.ID] = g
	return g, nil
}

func (repo *gradeRepository) DeleteGrade(_ context.Context, id int64) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.grades[id]; !ok {
		return grade.ErrNotFound
	}
	delete(repo.db.grades, id)
	return nil
}

func (repo *gradeRepository) QueryGradeDetails(_ context.Context, filter grade.QueryFilter) ([]grade.Detail, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	details := make([]grade.Detail, 0)
	for _, g := range repo.db.grades {
		if filter.StudentID != 0 && g.StudentID != filter.StudentID {
			continue
		}
		if filter.SubjectID != 0 && g.SubjectID != filter.SubjectID {
			continue
		}
		details = append(details, grade.Detail{
			ID:           g.ID,
			StudentID:    g.StudentID,
			StudentName:  repo.db.students[g.StudentID].Name,
			SubjectID:    g.SubjectID,
			SubjectName:  repo.db.subjects[g.SubjectID].Name,
			Value:        g.Value,
			DateAssigned: g.DateAssigned,
		})
	}
	sort.Slice(details, func(i, j int) bool {
		if !details[i].DateAssigned.Equal(details[j].DateAssigned) {
			return details[i].DateAssigned.After(details[j].DateAssigned)
		}
		return details[i].ID > details[j].ID
	})
	return details, nil
}
