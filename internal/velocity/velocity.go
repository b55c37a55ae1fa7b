// Package velocity provides applicant application-velocity signals.
package velocity

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/opensource-finance/heron/internal/domain"
)

// Service counts recent applications per applicant. The count feeds the
// policy overlay's recent_applications variable.
type Service struct {
	repo domain.Repository
	db   *sql.DB // Direct DB access for custom queries
}

// NewService creates a new velocity service.
func NewService(repo domain.Repository) *Service {
	return &Service{repo: repo}
}

// GetApplicationCount returns the number of applications an applicant
// filed within the lookback window.
func (s *Service) GetApplicationCount(ctx context.Context, tenantID, applicantID string, window time.Duration) (int64, error) {
	if tenantID == "" || applicantID == "" {
		return 0, fmt.Errorf("tenantID and applicantID are required")
	}

	since := time.Now().Add(-window)

	if s.db != nil {
		return s.countFromDB(ctx, tenantID, applicantID, since)
	}

	if s.repo != nil {
		return s.repo.CountApplicationsByApplicant(ctx, tenantID, applicantID, since)
	}

	return 0, fmt.Errorf("no data source available")
}

// countFromDB queries the database directly for the application count.
func (s *Service) countFromDB(ctx context.Context, tenantID, applicantID string, since time.Time) (int64, error) {
	query := `
		SELECT COUNT(*) FROM applications
		WHERE tenant_id = ?
		AND applicant_id = ?
		AND created_at >= ?
	`

	var count int64
	err := s.db.QueryRowContext(ctx, query, tenantID, applicantID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}

	return count, nil
}

// GetActivityGetter returns an ActivityGetter function for the policy engine.
func (s *Service) GetActivityGetter() func(ctx context.Context, tenantID, applicantID string, window time.Duration) (int64, error) {
	return s.GetApplicationCount
}
