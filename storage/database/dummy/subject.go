package dummydb

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/gradeportal/core"
	"github.com/trezcool/gradeportal/core/subject"
)

type subjectRepository struct {
	db *DB
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *DB) *subjectRepository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) nameTaken(s subject.Subject) bool {
	for _, other := range repo.db.subjects {
		if other.Name == s.Name && other.ID != s.ID {
			return true
		}
	}
	return false
}

func (repo *subjectRepository) CreateSubject(_ context.Context, s subject.Subject) (subject.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.nameTaken(s) {
		return subject.Subject{}, errors.Wrap(core.ErrUniqueViolation, "inserting subject")
	}
	s.ID = repo.db.nextPK()
	repo.db.subjects[s.ID] = s
	return s, nil
}

func (repo *subjectRepository) GetSubjectByID(_ context.Context, id int64) (subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.subjects[id]; ok {
		return s, nil
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (repo *subjectRepository) GetSubjectByName(_ context.Context, name string) (subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, s := range repo.db.subjects {
		if s.Name == name {
			return s, nil
		}
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (repo *subjectRepository) QuerySubjects(_ context.Context) ([]subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subjects := make([]subject.Subject, 0, len(repo.db.subjects))
	for _, s := range repo.db.subjects {
		subjects = append(subjects, s)
	}
	sort.Slice(subjects, func(i, j int) bool {
		if subjects[i].Name != subjects[j].Name {
			return subjects[i].Name < subjects[j].Name
		}
		return subjects[i].ID < subjects[j].ID
	})
	return subjects, nil
}

func (repo *subjectRepository) UpdateSubject(_ context.Context, s subject.Subject) (subject.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.subjects[s.ID]; !ok {
		return subject.Subject{}, subject.ErrNotFound
	}
	if repo.nameTaken(s) {
		return subject.Subject{}, errors.Wrap(core.ErrUniqueViolation, "updating subject")
	}
	repo.db.subjects[s.ID] = s
	return s, nil
}

func (repo *subjectRepository) DeleteSubject(_ context.Context, id int64) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.subjects[id]; !ok {
		return subject.ErrNotFound
	}
	for _, g := range repo.db.grades {
		if g.SubjectID == id {
			return errors.Wrap(core.ErrForeignKeyViolation, "deleting subject")
		}
	}
	delete(repo.db.subjects, id)
	return nil
}

func (repo *subjectRepository) CountSubjectGrades(_ context.Context, id int64) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	n := 0
	for _, g := range repo.db.grades {
		if g.SubjectID == id {
			n++
		}
	}
	return n, nil
}
