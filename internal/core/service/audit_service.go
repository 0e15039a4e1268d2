package service

import (
	"context"

	"github.com/klubfitness/fitness-club/internal/core/domain"
	"github.com/klubfitness/fitness-club/internal/core/ports"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

type AuditService struct {
	repo ports.AuditRepository
}

func NewAuditService(repo ports.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// ListEvents returns recent reservation events, newest first. The limit is
// clamped to [1, 500].
func (s *AuditService) ListEvents(ctx context.Context, filter ports.AuditFilter) ([]*domain.ReservationEvent, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultAuditLimit
	case filter.Limit > maxAuditLimit:
		filter.Limit = maxAuditLimit
	}
	return s.repo.List(ctx, filter)
}
