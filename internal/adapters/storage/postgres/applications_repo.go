package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"adoptapaw-service/internal/domain/applications"
)

type ApplicationsRepo struct {
	db *sql.DB
}

func NewApplicationsRepo(db *sql.DB) *ApplicationsRepo {
	return &ApplicationsRepo{db: db}
}

func (r *ApplicationsRepo) Create(ctx context.Context, a applications.Application) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO applications (
			id, user_id, dog_id, status,
			home_visit_date, final_visit_date,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		a.ID,
		a.UserID,
		a.DogID,
		string(a.Status),
		toNullTime(a.HomeVisitDate),
		toNullTime(a.FinalVisitDate),
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

func (r *ApplicationsRepo) GetByID(ctx context.Context, id string) (applications.Application, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return applications.Application{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, selectApplications+` WHERE id = $1`, id)
	return scanApplication(row)
}

func (r *ApplicationsRepo) FindByUserAndDog(ctx context.Context, userID, dogID string) ([]applications.Application, error) {
	return r.list(ctx, selectApplications+`
		WHERE user_id = $1 AND dog_id = $2
		ORDER BY created_at DESC
	`, userID, dogID)
}

func (r *ApplicationsRepo) ListByUser(ctx context.Context, userID, dogID string) ([]applications.Application, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}

	if dogID != "" {
		return r.list(ctx, selectApplications+`
			WHERE user_id = $1 AND dog_id = $2
			ORDER BY created_at DESC
		`, userID, dogID)
	}
	return r.list(ctx, selectApplications+`
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
}

func (r *ApplicationsRepo) ListAll(ctx context.Context) ([]applications.Application, error) {
	return r.list(ctx, selectApplications+` ORDER BY created_at DESC`)
}

// UpdateStatus condiciona el write al status previamente leído: dos
// transiciones admin concurrentes desde el mismo estado no pueden ganar
// las dos. Si el row existe pero el status ya cambió => ErrConflict.
func (r *ApplicationsRepo) UpdateStatus(ctx context.Context, a applications.Application, from applications.Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE applications
		SET
			status = $3,
			home_visit_date = $4,
			final_visit_date = $5,
			updated_at = $6
		WHERE id = $1 AND status = $2
	`,
		a.ID,
		string(from),
		string(a.Status),
		toNullTime(a.HomeVisitDate),
		toNullTime(a.FinalVisitDate),
		a.UpdatedAt,
	)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n > 0 {
		return nil
	}

	// Distinguir "no existe" de "perdió la carrera".
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM applications WHERE id = $1)`, a.ID,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return applications.ErrConflict
}

const selectApplications = `
	SELECT
		id, user_id, dog_id, status,
		home_visit_date, final_visit_date,
		created_at, updated_at
	FROM applications
`

func (r *ApplicationsRepo) list(ctx context.Context, query string, args ...any) ([]applications.Application, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]applications.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanApplication(row rowScanner) (applications.Application, error) {
	var a applications.Application
	var status string
	var homeVisit, finalVisit sql.NullTime

	if err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.DogID,
		&status,
		&homeVisit,
		&finalVisit,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return applications.Application{}, ErrNotFound
		}
		return applications.Application{}, err
	}

	a.Status = applications.Status(status)
	if homeVisit.Valid {
		t := homeVisit.Time
		a.HomeVisitDate = &t
	}
	if finalVisit.Valid {
		t := finalVisit.Time
		a.FinalVisitDate = &t
	}

	return a, nil
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
