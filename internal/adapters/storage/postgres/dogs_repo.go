package postgres

import (
	"context"
	"database/sql"
	"strings"

	"adoptapaw-service/internal/domain/dogs"
)

type DogsRepo struct {
	db *sql.DB
}

func NewDogsRepo(db *sql.DB) *DogsRepo {
	return &DogsRepo{db: db}
}

func (r *DogsRepo) Create(ctx context.Context, d dogs.Dog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dogs (
			id, name, breed, age, gender,
			location, contact_number, owner_name, image_url,
			status, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		d.ID,
		d.Name,
		d.Breed,
		d.Age,
		string(d.Gender),
		d.Location,
		d.ContactNumber,
		d.OwnerName,
		d.ImageURL,
		string(d.Status),
		d.CreatedAt,
		d.UpdatedAt,
	)
	return err
}

func (r *DogsRepo) GetByID(ctx context.Context, id string) (dogs.Dog, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return dogs.Dog{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, name, breed, age, gender,
			location, contact_number, owner_name, image_url,
			status, created_at, updated_at
		FROM dogs
		WHERE id = $1
	`, id)

	return scanDog(row)
}

func (r *DogsRepo) List(ctx context.Context, f dogs.ListFilter) ([]dogs.Dog, error) {
	query := `
		SELECT
			id, name, breed, age, gender,
			location, contact_number, owner_name, image_url,
			status, created_at, updated_at
		FROM dogs
	`
	args := []any{}
	if f.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(f.Status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]dogs.Dog, 0)
	for rows.Next() {
		d, err := scanDog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DogsRepo) Update(ctx context.Context, d dogs.Dog) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE dogs
		SET
			name = $2,
			breed = $3,
			age = $4,
			gender = $5,
			location = $6,
			contact_number = $7,
			owner_name = $8,
			image_url = $9,
			status = $10,
			updated_at = $11
		WHERE id = $1
	`,
		d.ID,
		d.Name,
		d.Breed,
		d.Age,
		string(d.Gender),
		d.Location,
		d.ContactNumber,
		d.OwnerName,
		d.ImageURL,
		string(d.Status),
		d.UpdatedAt,
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDog(row rowScanner) (dogs.Dog, error) {
	var d dogs.Dog
	var gender, status string

	if err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Breed,
		&d.Age,
		&gender,
		&d.Location,
		&d.ContactNumber,
		&d.OwnerName,
		&d.ImageURL,
		&status,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return dogs.Dog{}, ErrNotFound
		}
		return dogs.Dog{}, err
	}

	d.Gender = dogs.Gender(gender)
	d.Status = dogs.Status(status)
	return d, nil
}
