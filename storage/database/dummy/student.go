package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/gradeportal/core"
	"github.com/trezcool/gradeportal/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) checkConstraints(s student.Student) error {
	if s.UserID != nil {
		if _, ok := repo.db.users[*s.UserID]; !ok {
			return core.ErrForeignKeyViolation
		}
	}
	for _, other := range repo.db.students {
		if other.ID == s.ID {
			continue
		}
		if other.Name == s.Name && other.Section == s.Section {
			return core.ErrUniqueViolation
		}
		if s.UserID != nil && other.IsOwnedBy(*s.UserID) {
			return core.ErrUniqueViolation
		}
	}
	return nil
}

func (repo *studentRepository) CreateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if err := repo.checkConstraints(s); err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	s.ID = repo.db.nextPK()
	repo.db.students[s.ID] = s
	return s, nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id int64) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.students[id]; ok {
		return s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByUserID(_ context.Context, userID int64) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, s := range repo.db.students {
		if s.IsOwnedBy(userID) {
			return s, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter student.QueryFilter, orderings ...core.DBOrdering) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	search := strings.ToLower(filter.Search)
	students := make([]student.Student, 0)
	for _, s := range repo.db.students {
		if search != "" && !strings.Contains(strings.ToLower(s.Name), search) {
			continue
		}
		if filter.Section != "" && s.Section != filter.Section {
			continue
		}
		students = append(students, s)
	}

	if len(orderings) == 0 {
		orderings = []core.DBOrdering{{Field: "name", Ascending: true}}
	}
	sort.SliceStable(students, func(i, j int) bool {
		for _, ord := range orderings {
			if c := compareStudents(students[i], students[j], ord.Field); c != 0 {
				return (c < 0) == ord.Ascending
			}
		}
		return students[i].ID < students[j].ID
	})
	return students, nil
}

func compareStudents(a, b student.Student, field string) int {
	switch field {
	case "id":
		return compareInt64(a.ID, b.ID)
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "section":
		return strings.Compare(a.Section, b.Section)
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	}
	return 0
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (repo *studentRepository) UpdateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.students[s.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	if err := repo.checkConstraints(s); err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	repo.db.students[s.ID] = s
	return s, nil
}

func (repo *studentRepository) DeleteStudent(_ context.Context, id int64) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.students[id]; !ok {
		return student.ErrNotFound
	}
	for _, g := range repo.db.grades {
		if g.StudentID == id {
			return errors.Wrap(core.ErrForeignKeyViolation, "deleting student")
		}
	}
	delete(repo.db.students, id)
	return nil
}

func (repo *studentRepository) CountStudentGrades(_ context.Context, id int64) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	n := 0
	for _, g := range repo.db.grades {
		if g.StudentID == id {
			n++
		}
	}
	return n, nil
}
