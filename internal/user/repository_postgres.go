package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepository persists users through database/sql over the pgx stdlib
// driver.
type PostgresRepository struct {
	db *sql.DB
}

var _ Repository = (*PostgresRepository)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

const uniqueViolationCode = "23505"

const (
	schemaDDL = `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			first_name VARCHAR(100) NOT NULL,
			last_name VARCHAR(100) NOT NULL,
			email VARCHAR(256) NOT NULL,
			phone VARCHAR(20) NOT NULL DEFAULT '',
			birth_day TIMESTAMP NOT NULL,
			occupation VARCHAR(100) NOT NULL DEFAULT '',
			sex VARCHAR(10) NOT NULL DEFAULT '',
			profile BYTEA,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP
		);
		CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email);
	`

	listUsersQuery = `
		SELECT id, first_name, last_name, email, phone, birth_day, occupation, sex, profile, created_at, updated_at
		FROM users
		ORDER BY created_at, id
	`
	getUserByIDQuery = `
		SELECT id, first_name, last_name, email, phone, birth_day, occupation, sex, profile, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	getUserByEmailQuery = `
		SELECT id, first_name, last_name, email, phone, birth_day, occupation, sex, profile, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	insertUserQuery = `
		INSERT INTO users (id, first_name, last_name, email, phone, birth_day, occupation, sex, profile, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	updateUserQuery = `
		UPDATE users
		SET first_name = $1,
			last_name = $2,
			email = $3,
			phone = $4,
			birth_day = $5,
			occupation = $6,
			sex = $7,
			profile = $8,
			updated_at = $9
		WHERE id = $10
	`
	deleteUserQuery = `DELETE FROM users WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the users table and its unique email index when they
// do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schemaDDL)
	return err
}

func (r *PostgresRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, listUsersQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := r.db.QueryRowContext(ctx, getUserByIDQuery, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	return u, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	row := r.db.QueryRowContext(ctx, getUserByEmailQuery, email)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	return u, nil
}

func (r *PostgresRepository) Create(ctx context.Context, u User) (User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	_, err := r.db.ExecContext(
		ctx,
		insertUserQuery,
		u.ID,
		u.FirstName,
		u.LastName,
		u.Email,
		u.Phone,
		u.BirthDay,
		u.Occupation,
		u.Sex,
		u.Profile,
		u.CreatedAt,
	)
	if err != nil {
		return User{}, translateError(err)
	}

	return u, nil
}

func (r *PostgresRepository) Update(ctx context.Context, u User) (User, error) {
	var updatedAt sql.NullTime
	if u.UpdatedAt != nil {
		updatedAt = sql.NullTime{Time: *u.UpdatedAt, Valid: true}
	}

	result, err := r.db.ExecContext(
		ctx,
		updateUserQuery,
		u.FirstName,
		u.LastName,
		u.Email,
		u.Phone,
		u.BirthDay,
		u.Occupation,
		u.Sex,
		u.Profile,
		updatedAt,
		u.ID,
	)
	if err != nil {
		return User{}, translateError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return User{}, err
	}
	if affected == 0 {
		return User{}, ErrNotFound
	}

	return u, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, deleteUserQuery, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// translateError maps a unique constraint violation onto ErrDuplicateEmail so
// a race past the service pre-check still produces the duplicate outcome.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return ErrDuplicateEmail
	}
	return err
}

func scanUser(scanner rowScanner) (User, error) {
	var u User
	var updatedAt sql.NullTime

	if err := scanner.Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.Phone,
		&u.BirthDay,
		&u.Occupation,
		&u.Sex,
		&u.Profile,
		&u.CreatedAt,
		&updatedAt,
	); err != nil {
		return User{}, err
	}

	if updatedAt.Valid {
		t := updatedAt.Time
		u.UpdatedAt = &t
	}

	return u, nil
}
