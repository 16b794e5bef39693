package user

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	createUsersTable = `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`
	getUserByEmailQuery = `
		SELECT id, email, password_hash, first_name, last_name, updated_at
		FROM users
		WHERE email = $1
	`
	getUserByIDQuery = `
		SELECT id, email, password_hash, first_name, last_name, updated_at
		FROM users
		WHERE id = $1
	`
	insertUserQuery = `
		INSERT INTO users (id, email, password_hash, first_name, last_name, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	updateUserQuery = `
		UPDATE users
		SET email = $2,
			password_hash = $3,
			first_name = $4,
			last_name = $5,
			updated_at = $6
		WHERE id = $1
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the users table if it does not exist yet.
func (r *PostgresRepository) EnsureSchema() error {
	_, err := r.db.Exec(createUsersTable)
	return err
}

func (r *PostgresRepository) GetByEmail(email string) (User, error) {
	return scanUser(r.db.QueryRow(getUserByEmailQuery, email))
}

func (r *PostgresRepository) GetByID(id string) (User, error) {
	return scanUser(r.db.QueryRow(getUserByIDQuery, id))
}

func (r *PostgresRepository) Create(user User) (User, error) {
	_, err := r.db.Exec(insertUserQuery,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrEmailExists
		}
		return User{}, err
	}
	return user, nil
}

func (r *PostgresRepository) Update(user User) (User, error) {
	res, err := r.db.Exec(updateUserQuery,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return User{}, ErrNotFound
	}
	return user, nil
}

func scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// isUniqueViolation reports whether err is Postgres error 23505, raised
// when the unique index on email rejects an insert.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
