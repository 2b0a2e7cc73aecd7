package sqlxrepos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/gradeportal/core/user"
)

const userColumns = `id, username, password_hash, first_name, last_name, email, role, status, assigned_class,
	created_at, updated_at, last_login`

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := repo.db.Rebind(`
		INSERT INTO users (username, password_hash, first_name, last_name, email, role, status, assigned_class,
		                   created_at, updated_at, last_login)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)
	err := repo.db.QueryRowxContext(
		ctx, q,
		usr.Username, usr.PasswordHash, usr.FirstName, usr.LastName, usr.Email, usr.Role, usr.Status,
		usr.AssignedClass, usr.CreatedAt, usr.UpdatedAt, usr.LastLogin,
	).Scan(&usr.ID)
	if err != nil {
		return user.User{}, trapErr(err, user.ErrNotFound, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) getUser(ctx context.Context, where string, arg interface{}) (user.User, error) {
	var usr user.User
	q := repo.db.Rebind("SELECT " + userColumns + " FROM users WHERE " + where)
	if err := repo.db.GetContext(ctx, &usr, q, arg); err != nil {
		return user.User{}, trapErr(err, user.ErrNotFound, "selecting user")
	}
	return usr, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id int64) (user.User, error) {
	return repo.getUser(ctx, "id = ?", id)
}

func (repo userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return repo.getUser(ctx, "username = ?", username)
}

func (repo userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	var (
		conds []string
		args  []interface{}
	)
	if len(filter.Roles) > 0 {
		conds = append(conds, "role IN (?)")
		args = append(args, filter.Roles)
	}
	if len(filter.Statuses) > 0 {
		conds = append(conds, "status IN (?)")
		args = append(args, filter.Statuses)
	}

	q := "SELECT " + userColumns + " FROM users"
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY last_name, first_name, id"

	q, args, err := sqlx.In(q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "expanding user query")
	}

	users := make([]user.User, 0)
	if err = repo.db.SelectContext(ctx, &users, repo.db.Rebind(q), args...); err != nil {
		return nil, trapErr(err, user.ErrNotFound, "selecting users")
	}
	return users, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := repo.db.Rebind(`
		UPDATE users
		SET username = ?, password_hash = ?, first_name = ?, last_name = ?, email = ?, role = ?, status = ?,
		    assigned_class = ?, updated_at = ?, last_login = ?
		WHERE id = ?`)
	res, err := repo.db.ExecContext(
		ctx, q,
		usr.Username, usr.PasswordHash, usr.FirstName, usr.LastName, usr.Email, usr.Role, usr.Status,
		usr.AssignedClass, usr.UpdatedAt, usr.LastLogin, usr.ID,
	)
	if err != nil {
		return user.User{}, trapErr(err, user.ErrNotFound, "updating user")
	}
	if err = checkAffected(res, user.ErrNotFound); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo userRepository) DeleteUser(ctx context.Context, id int64) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM users WHERE id = ?"), id)
	if err != nil {
		return trapErr(err, user.ErrNotFound, "deleting user")
	}
	return checkAffected(res, user.ErrNotFound)
}
