package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/xavierca1/visa-leads/internal/entity"
)

// LeadRepository is the Postgres-backed store. Insertion order is kept by
// the seq column.
type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `id, first_name, last_name, email, country_of_citizenship, linkedin,
	visas_interested, resume_url, open_input, status, created_at`

func (r *LeadRepository) Append(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.FirstName,
		lead.LastName,
		lead.Email,
		lead.CountryOfCitizenship,
		lead.LinkedIn,
		pq.Array(lead.VisasInterested),
		lead.ResumeURL,
		lead.OpenInput,
		string(lead.Status),
		lead.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return entity.ErrDuplicateLead
		}
		return &StorageError{Op: "insert", Err: err}
	}

	return nil
}

func (r *LeadRepository) List(ctx context.Context) ([]*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads ORDER BY seq`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, &StorageError{Op: "select", Err: err}
	}
	defer rows.Close()

	leads := []*entity.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, &StorageError{Op: "scan", Err: err}
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "select", Err: err}
	}

	return leads, nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, &StorageError{Op: "select", Err: err}
	}
	return lead, nil
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, status entity.LeadStatus) (*entity.Lead, error) {
	if !status.IsValid() {
		return nil, entity.ErrInvalidStatus
	}

	query := `UPDATE leads SET status = $1 WHERE id = $2 RETURNING ` + leadColumns

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, string(status), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, &StorageError{Op: "update", Err: err}
	}
	return lead, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var (
		lead   entity.Lead
		visas  pq.StringArray
		status string
	)
	err := row.Scan(
		&lead.ID,
		&lead.FirstName,
		&lead.LastName,
		&lead.Email,
		&lead.CountryOfCitizenship,
		&lead.LinkedIn,
		&visas,
		&lead.ResumeURL,
		&lead.OpenInput,
		&status,
		&lead.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	lead.VisasInterested = []string(visas)
	lead.Status = entity.LeadStatus(status)
	lead.CreatedAt = lead.CreatedAt.UTC()
	return &lead, nil
}
