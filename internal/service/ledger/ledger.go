// Package ledger implements tenant-scoped ledger CRUD.
package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/llk-ledger/ledger/internal/domain"
	"github.com/llk-ledger/ledger/internal/errs"
)

// Repository is the persistence capability the ledger service depends on.
type Repository interface {
	CreateLedger(ctx context.Context, tenantID uuid.UUID, name string) (domain.Ledger, error)
	GetLedgerByID(ctx context.Context, tenantID, ledgerID uuid.UUID) (domain.Ledger, error)
	GetLedgersByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.Ledger, error)
}

type Service struct {
	repo Repository
}

func New(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateLedger(ctx context.Context, tenantID uuid.UUID, name string) (domain.Ledger, error) {
	if tenantID == uuid.Nil {
		return domain.Ledger{}, errs.InvariantViolation("tenant is required")
	}
	if name == "" {
		return domain.Ledger{}, errs.InvariantViolation("name is required")
	}
	l, err := s.repo.CreateLedger(ctx, tenantID, name)
	if err != nil {
		return domain.Ledger{}, errs.RepositoryError(err)
	}
	return l, nil
}

func (s *Service) GetLedgerByID(ctx context.Context, tenantID, ledgerID uuid.UUID) (domain.Ledger, error) {
	l, err := s.repo.GetLedgerByID(ctx, tenantID, ledgerID)
	if err != nil {
		if errs.Is(err, errs.KindLedgerNotFound) {
			return domain.Ledger{}, err
		}
		return domain.Ledger{}, errs.RepositoryError(err)
	}
	return l, nil
}

func (s *Service) GetLedgersByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.Ledger, error) {
	ledgers, err := s.repo.GetLedgersByTenant(ctx, tenantID)
	if err != nil {
		return nil, errs.RepositoryError(err)
	}
	return ledgers, nil
}
