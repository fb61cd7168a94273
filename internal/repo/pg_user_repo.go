package repo

import (
	"context"
	"errors"
	"fmt"

	dom "github.com/hirmezb/tasktracker/internal/domain"
	"github.com/hirmezb/tasktracker/internal/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGUserRepo implements UserRepo with Postgres.
type PGUserRepo struct {
	db *pgxpool.Pool
}

// NewPGUserRepo returns a new PGUserRepo.
func NewPGUserRepo(db *pgxpool.Pool) *PGUserRepo {
	return &PGUserRepo{db: db}
}

// GetByEmail returns the user by email.
func (r *PGUserRepo) GetByEmail(ctx context.Context, email string) (dom.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`,
		utils.NormalizeEmail(email),
	))
}

// Create inserts a new user and returns it.
func (r *PGUserRepo) Create(ctx context.Context, u dom.User) (dom.User, error) {
	id, err := uuid.Parse(u.ID)
	if err != nil {
		return dom.User{}, fmt.Errorf("user id: %w", err)
	}
	query := `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, email, password_hash, created_at`
	out, err := scanUser(r.db.QueryRow(ctx, query, id, u.Name, utils.NormalizeEmail(u.Email), u.PasswordHash, u.CreatedAt))
	if err != nil {
		if utils.IsUniqueViolation(err) {
			return dom.User{}, ErrDuplicate
		}
		return dom.User{}, err
	}
	return out, nil
}

func scanUser(row pgx.Row) (dom.User, error) {
	var (
		u  dom.User
		id uuid.UUID
	)
	if err := row.Scan(&id, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, ErrNotFound
		}
		return dom.User{}, err
	}
	u.ID = id.String()
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}
