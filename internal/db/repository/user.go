package repository

import (
	"context"
	"database/sql"

	"gatecheck/internal/db/dbstore"
	"gatecheck/internal/domain"
)

type UserRepo struct {
	q *dbstore.Queries
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{q: dbstore.New(db)}
}

func (r *UserRepo) WithTx(tx *sql.Tx) domain.UserRepository {
	return &UserRepo{q: r.q.WithTx(tx)}
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	row, err := r.q.CreateUser(ctx, dbstore.CreateUserParams{
		Username: u.Username,
		Email:    nullString(u.Email),
		IsAdmin:  boolToInt(u.IsAdmin),
	})
	if err != nil {
		return nil, mapDBError(err)
	}
	return userFromDB(row), nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row, err := r.q.GetUser(ctx, id)
	if err != nil {
		return nil, mapDBError(err)
	}
	return userFromDB(row), nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row, err := r.q.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, mapDBError(err)
	}
	return userFromDB(row), nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.q.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, len(rows))
	for i, row := range rows {
		users[i] = *userFromDB(row)
	}
	return users, nil
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	return mapDBError(r.q.UpdateUser(ctx, dbstore.UpdateUserParams{
		Username: u.Username,
		Email:    nullString(u.Email),
		IsAdmin:  boolToInt(u.IsAdmin),
		ID:       u.ID,
	}))
}

func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	return r.q.DeleteUser(ctx, id)
}
