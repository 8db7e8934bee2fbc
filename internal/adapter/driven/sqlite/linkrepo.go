package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hyunwookim/mailvet/internal/domain/model"
	"github.com/hyunwookim/mailvet/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.LinkStore = (*LinkRepo)(nil)

// LinkRepo is the SQLite implementation of the LinkStore port interface.
type LinkRepo struct {
	db *DB
}

// NewLinkRepo creates a new LinkRepo backed by the given DB.
func NewLinkRepo(db *DB) *LinkRepo {
	return &LinkRepo{db: db}
}

// Create stores a new link and returns its assigned ID. Returns
// driven.ErrDuplicateLink when the (user, service) pair is already linked.
func (r *LinkRepo) Create(ctx context.Context, link model.ServiceLink) (int64, error) {
	const query = `
		INSERT INTO user_services (user_id, service_id, email_id, subscription_date, status)
		VALUES (?, ?, ?, ?, ?)
	`

	var emailID any
	if link.EmailID != 0 {
		emailID = link.EmailID
	}

	var subscriptionDate any
	if !link.SubscriptionDate.IsZero() {
		subscriptionDate = link.SubscriptionDate.UTC().Format("2006-01-02")
	}

	status := link.Status
	if status == "" {
		status = model.LinkStatusActive
	}

	result, err := r.db.Writer.ExecContext(ctx, query,
		link.UserID, link.ServiceID, emailID, subscriptionDate, status,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("link user %d to service %d: %w", link.UserID, link.ServiceID, driven.ErrDuplicateLink)
		}
		return 0, fmt.Errorf("link user %d to service %d: %w", link.UserID, link.ServiceID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("link insert id: %w", err)
	}

	return id, nil
}

// GetByUserAndService returns the link for the given pair, or nil, nil if the
// user is not linked to the service.
func (r *LinkRepo) GetByUserAndService(ctx context.Context, userID, serviceID int64) (*model.ServiceLink, error) {
	const query = `
		SELECT id, user_id, service_id, email_id, subscription_date, status
		FROM user_services
		WHERE user_id = ? AND service_id = ?
	`

	link, err := scanLink(r.db.Reader.QueryRowContext(ctx, query, userID, serviceID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get link for user %d service %d: %w", userID, serviceID, err)
	}

	return link, nil
}

// ListByUser returns the user's links joined with their services, newest
// subscription first.
func (r *LinkRepo) ListByUser(ctx context.Context, userID int64) ([]driven.LinkedService, error) {
	const query = `
		SELECT
			us.id, us.user_id, us.service_id, us.email_id, us.subscription_date, us.status,
			s.id, s.name, s.domain, s.risk_grade, s.security_score, s.security_report,
			s.evaluated_at, s.review_pending, s.created_at
		FROM user_services us
		JOIN services s ON s.id = us.service_id
		WHERE us.user_id = ?
		ORDER BY us.subscription_date DESC, us.id DESC
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list links for user %d: %w", userID, err)
	}
	defer rows.Close()

	var linked []driven.LinkedService
	for rows.Next() {
		var link model.ServiceLink
		var emailID sql.NullInt64
		var subscriptionDate sql.NullString
		var svc model.Service
		var domain, evaluatedAt sql.NullString
		var score sql.NullFloat64
		var reviewPending int
		var createdAt string

		err := rows.Scan(
			&link.ID, &link.UserID, &link.ServiceID, &emailID, &subscriptionDate, &link.Status,
			&svc.ID, &svc.Name, &domain, &svc.Grade, &score, &svc.SecurityReport,
			&evaluatedAt, &reviewPending, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan linked service: %w", err)
		}

		link.EmailID = emailID.Int64
		if subscriptionDate.Valid {
			link.SubscriptionDate, err = parseTime(subscriptionDate.String)
			if err != nil {
				return nil, fmt.Errorf("parse subscription_date: %w", err)
			}
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

		linked = append(linked, driven.LinkedService{Link: link, Service: svc})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate linked services: %w", err)
	}

	return linked, nil
}

func scanLink(s scanner) (*model.ServiceLink, error) {
	var link model.ServiceLink
	var emailID sql.NullInt64
	var subscriptionDate sql.NullString

	err := s.Scan(&link.ID, &link.UserID, &link.ServiceID, &emailID, &subscriptionDate, &link.Status)
	if err != nil {
		return nil, err
	}

	link.EmailID = emailID.Int64

	if subscriptionDate.Valid {
		link.SubscriptionDate, err = parseTime(subscriptionDate.String)
		if err != nil {
			return nil, fmt.Errorf("parse subscription_date: %w", err)
		}
	}

	return &link, nil
}
