package dummydb

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/gradeportal/core"
	"github.com/trezcool/gradeportal/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) usernameTaken(usr user.User) bool {
	for _, u := range repo.db.users {
		if u.Username == usr.Username && u.ID != usr.ID {
			return true
		}
	}
	return false
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.usernameTaken(usr) {
		return user.User{}, errors.Wrap(core.ErrUniqueViolation, "inserting user")
	}
	usr.ID = repo.db.nextPK()
	repo.db.users[usr.ID] = usr
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id int64) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsername(_ context.Context, username string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Username == username {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryUsers(_ context.Context, filter user.QueryFilter) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	users := make([]user.User, 0)
	for _, usr := range repo.db.users {
		if len(filter.Roles) > 0 && !hasRole(filter.Roles, usr.Role) {
			continue
		}
		if len(filter.Statuses) > 0 && !hasStatus(filter.Statuses, usr.Status) {
			continue
		}
		users = append(users, usr)
	}
	sort.Slice(users, func(i, j int) bool {
		a, b := users[i], users[j]
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		return a.ID < b.ID
	})
	return users, nil
}

func hasRole(roles []user.Role, role user.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func hasStatus(statuses []user.Status, status user.Status) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.users[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	if repo.usernameTaken(usr) {
		return user.User{}, errors.Wrap(core.ErrUniqueViolation, "updating user")
	}
	repo.db.users[usr.ID] = usr
	return usr, nil
}

func (repo *userRepository) DeleteUser(_ context.Context, id int64) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(repo.db.users, id)
	// ON DELETE SET NULL
	for sid, s := range repo.db.students {
		if s.IsOwnedBy(id) {
			s.UserID = nil
			repo.db.students[sid] = s
		}
	}
	return nil
}
