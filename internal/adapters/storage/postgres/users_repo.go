package postgres

import (
	"context"
	"database/sql"
	"strings"

	"adoptapaw-service/internal/domain/users"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, name, email, phone, address,
			password_hash, id_document_ref,
			verified, role, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		u.ID,
		u.Name,
		u.Email,
		u.Phone,
		u.Address,
		u.PasswordHash,
		u.IDDocumentRef,
		u.Verified,
		string(u.Role),
		u.CreatedAt,
		u.UpdatedAt,
	)
	return err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return users.User{}, ErrNotFound
	}
	return r.getBy(ctx, `WHERE id = $1`, id)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return users.User{}, ErrNotFound
	}
	return r.getBy(ctx, `WHERE email = $1`, email)
}

func (r *UsersRepo) Update(ctx context.Context, u users.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET
			name = $2,
			phone = $3,
			address = $4,
			password_hash = $5,
			id_document_ref = $6,
			verified = $7,
			role = $8,
			updated_at = $9
		WHERE id = $1
	`,
		u.ID,
		u.Name,
		u.Phone,
		u.Address,
		u.PasswordHash,
		u.IDDocumentRef,
		u.Verified,
		string(u.Role),
		u.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UsersRepo) getBy(ctx context.Context, where string, arg any) (users.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, name, email, phone, address,
			password_hash, id_document_ref,
			verified, role, created_at, updated_at
		FROM users
	`+where, arg)

	var u users.User
	var role string

	if err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Phone,
		&u.Address,
		&u.PasswordHash,
		&u.IDDocumentRef,
		&u.Verified,
		&role,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return users.User{}, ErrNotFound
		}
		return users.User{}, err
	}

	u.Role = users.Role(role)
	return u, nil
}
