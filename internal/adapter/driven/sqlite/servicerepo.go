package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hyunwookim/mailvet/internal/domain/model"
	"github.com/hyunwookim/mailvet/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ServiceStore = (*ServiceRepo)(nil)

// ServiceRepo is the SQLite implementation of the ServiceStore port interface.
type ServiceRepo struct {
	db *DB
}

// NewServiceRepo creates a new ServiceRepo backed by the given DB.
func NewServiceRepo(db *DB) *ServiceRepo {
	return &ServiceRepo{db: db}
}

// Create stores a new service and returns its assigned ID.
func (r *ServiceRepo) Create(ctx context.Context, svc model.Service) (int64, error) {
	const query = `
		INSERT INTO services (name, domain, risk_grade, security_score, security_report, evaluated_at, review_pending, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var domain any
	if svc.Domain != "" {
		domain = svc.Domain
	}

	var evaluatedAt any
	if !svc.EvaluatedAt.IsZero() {
		evaluatedAt = svc.EvaluatedAt.UTC()
	}

	reviewPending := 0
	if svc.ReviewPending {
		reviewPending = 1
	}

	createdAt := svc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	result, err := r.db.Writer.ExecContext(ctx, query,
		svc.Name, domain, svc.Grade, svc.SecurityScore, svc.SecurityReport,
		evaluatedAt, reviewPending, createdAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("create service %q: %w", svc.Name, driven.ErrDuplicateDomain)
		}
		return 0, fmt.Errorf("create service %q: %w", svc.Name, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("service insert id: %w", err)
	}

	return id, nil
}

// GetByID retrieves a service by its ID. Returns nil, nil if no service exists.
func (r *ServiceRepo) GetByID(ctx context.Context, id int64) (*model.Service, error) {
	const query = serviceColumns + ` WHERE id = ?`

	svc, err := scanService(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get service %d: %w", id, err)
	}

	return svc, nil
}

// ListResolved returns all services with a non-empty domain, ordered by
// ascending ID. The resolver's first-match-wins policy depends on this order.
func (r *ServiceRepo) ListResolved(ctx context.Context) ([]model.Service, error) {
	const query = serviceColumns + ` WHERE domain IS NOT NULL ORDER BY id ASC`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list resolved services: %w", err)
	}
	defer rows.Close()

	return collectServices(rows)
}

// List returns services matching the evaluation filter and an optional
// case-insensitive name search, newest first.
func (r *ServiceRepo) List(ctx context.Context, filter driven.EvaluationFilter, search string) ([]model.Service, error) {
	query := serviceColumns + ` WHERE 1=1`
	var args []any

	switch filter {
	case driven.FilterPending:
		query += ` AND (review_pending = 1 OR risk_grade = '')`
	case driven.FilterCompleted:
		query += ` AND risk_grade != ''`
	}

	if search != "" {
		query += ` AND name LIKE ? COLLATE NOCASE`
		args = append(args, "%"+search+"%")
	}

	query += ` ORDER BY id DESC`

	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	return collectServices(rows)
}

// RecordEvaluation writes the outcome of a policy evaluation onto the service
// and clears its pending-review flag.
func (r *ServiceRepo) RecordEvaluation(ctx context.Context, id int64, grade model.RiskGrade, score float64, report string, evaluatedAt time.Time) error {
	const query = `
		UPDATE services
		SET risk_grade = ?, security_score = ?, security_report = ?, evaluated_at = ?, review_pending = 0
		WHERE id = ?
	`

	result, err := r.db.Writer.ExecContext(ctx, query, grade, score, report, evaluatedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("record evaluation for service %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("record evaluation for service %d: service not found", id)
	}

	return nil
}

// SetGrade records a manual grade override and clears the pending-review flag.
// Score and report are left untouched.
func (r *ServiceRepo) SetGrade(ctx context.Context, id int64, grade model.RiskGrade, evaluatedAt time.Time) error {
	const query = `
		UPDATE services
		SET risk_grade = ?, evaluated_at = ?, review_pending = 0
		WHERE id = ?
	`

	result, err := r.db.Writer.ExecContext(ctx, query, grade, evaluatedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("set grade for service %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("set grade for service %d: service not found", id)
	}

	return nil
}

const serviceColumns = `
	SELECT id, name, domain, risk_grade, security_score, security_report, evaluated_at, review_pending, created_at
	FROM services`

func collectServices(rows *sql.Rows) ([]model.Service, error) {
	var services []model.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, *svc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}

	return services, nil
}

func scanService(s scanner) (*model.Service, error) {
	var svc model.Service
	var domain, evaluatedAt sql.NullString
	var score sql.NullFloat64
	var reviewPending int
	var createdAt string

	err := s.Scan(
		&svc.ID, &svc.Name, &domain, &svc.Grade, &score,
		&svc.SecurityReport, &evaluatedAt, &reviewPending, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	svc.Domain = domain.String
	svc.ReviewPending = reviewPending != 0

	if score.Valid {
		v := score.Float64
		svc.SecurityScore = &v
	}

	if evaluatedAt.Valid {
		svc.EvaluatedAt, err = parseTime(evaluatedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse evaluated_at: %w", err)
		}
	}

	svc.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &svc, nil
}
