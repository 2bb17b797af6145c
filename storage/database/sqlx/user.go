package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/mwangaza/darasa/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db: sqlx.NewDb(db, "postgres")}
}

// userRow maps the app_user table.
type userRow struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	Name         string    `db:"name"`
	Role         string    `db:"role"`
	SchoolID     string    `db:"school_id"`
	IsActive     bool      `db:"is_active"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (repo userRepository) row(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Email:        usr.Email,
		Name:         usr.Name,
		Role:         usr.Role,
		SchoolID:     usr.SchoolID,
		IsActive:     usr.IsActive,
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
	}
}

func (repo userRepository) unrow(row userRow) user.User {
	return user.User{
		ID:           row.ID,
		Email:        row.Email,
		Name:         row.Name,
		Role:         row.Role,
		SchoolID:     row.SchoolID,
		IsActive:     row.IsActive,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		usr.ID = uuid.New().String()
	}
	const q = `INSERT INTO app_user (id, email, name, role, school_id, is_active, password_hash, created_at, updated_at)
		VALUES (:id, :email, :name, :role, :school_id, :is_active, :password_hash, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, repo.row(usr)); err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var row userRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM app_user WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user by id")
	}
	return repo.unrow(row), nil
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var row userRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM app_user WHERE email = $1`, email); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user by email")
	}
	return repo.unrow(row), nil
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	existing, err := repo.GetUserByEmail(ctx, usr.Email)
	if err != nil {
		if err == user.ErrNotFound {
			return repo.CreateUser(ctx, usr)
		}
		return user.User{}, err
	}

	usr.ID = existing.ID
	usr.CreatedAt = existing.CreatedAt
	usr.UpdatedAt = time.Now().UTC()
	const q = `UPDATE app_user
		SET name = :name, role = :role, school_id = :school_id, is_active = :is_active,
			password_hash = :password_hash, updated_at = :updated_at
		WHERE id = :id`
	if _, err := repo.db.NamedExecContext(ctx, q, repo.row(usr)); err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return usr, nil
}
