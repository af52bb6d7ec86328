// Package read implements the validated listing and trial-balance read paths.
package read

import (
	"context"

	"github.com/google/uuid"

	"github.com/llk-ledger/ledger/internal/cursor"
	"github.com/llk-ledger/ledger/internal/domain"
	"github.com/llk-ledger/ledger/internal/errs"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// ListQuery is the validated input shared by all three listings. The
// repository is asked for Limit+1 rows; see splitPage.
type ListQuery struct {
	TenantID uuid.UUID
	Limit    int
	Cursor   *cursor.Cursor
}

// Repository is the persistence capability the read service depends on.
// Each List* method returns up to Limit+1 rows (the extra row signals that a
// further page exists) plus the per-ledger trial balance scan.
type Repository interface {
	ListAccounts(ctx context.Context, q ListQuery) ([]domain.Account, error)
	ListTransactions(ctx context.Context, q ListQuery) ([]domain.Transaction, error)
	ListEntries(ctx context.Context, q ListQuery) ([]domain.Entry, error)
	TrialBalance(ctx context.Context, tenantID, ledgerID uuid.UUID) (domain.TrialBalance, error)
	LedgerExists(ctx context.Context, tenantID, ledgerID uuid.UUID) (bool, error)
}

type Service struct {
	repo Repository
}

func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Query is what callers at the HTTP edge have in hand: a tenant, an optional
// limit, and an optional opaque cursor string.
type Query struct {
	TenantID  uuid.UUID
	Limit     *int
	RawCursor *string
}

func (s *Service) validate(q Query) (ListQuery, error) {
	if q.TenantID == uuid.Nil {
		return ListQuery{}, errs.InvariantViolation("tenant is required")
	}

	limit := DefaultLimit
	if q.Limit != nil {
		limit = *q.Limit
		if limit < 1 || limit > MaxLimit {
			return ListQuery{}, errs.InvariantViolationf("limit must be between 1 and %d", MaxLimit)
		}
	}

	out := ListQuery{TenantID: q.TenantID, Limit: limit}

	if q.RawCursor != nil {
		if *q.RawCursor == "" {
			return ListQuery{}, errs.InvariantViolation("cursor must not be empty")
		}
		c, err := cursor.Decode(*q.RawCursor)
		if err != nil {
			return ListQuery{}, errs.InvariantViolationf("invalid cursor: %v", err)
		}
		out.Cursor = &c
	}

	return out, nil
}

func (s *Service) ListAccounts(ctx context.Context, q Query) (domain.Page[domain.Account], error) {
	lq, err := s.validate(q)
	if err != nil {
		return domain.Page[domain.Account]{}, err
	}
	rows, err := s.repo.ListAccounts(ctx, lq)
	if err != nil {
		return domain.Page[domain.Account]{}, errs.RepositoryError(err)
	}
	page, next := splitPage(rows, lq.Limit)
	var nc *string
	if next != nil {
		c := cursor.Encode(next.CreatedAt, next.ID)
		nc = &c
	}
	return domain.Page[domain.Account]{Data: page, NextCursor: nc}, nil
}

func (s *Service) ListTransactions(ctx context.Context, q Query) (domain.Page[domain.Transaction], error) {
	lq, err := s.validate(q)
	if err != nil {
		return domain.Page[domain.Transaction]{}, err
	}
	rows, err := s.repo.ListTransactions(ctx, lq)
	if err != nil {
		return domain.Page[domain.Transaction]{}, errs.RepositoryError(err)
	}
	page, next := splitPageTx(rows, lq.Limit)
	var nc *string
	if next != nil {
		c := cursor.Encode(next.CreatedAt, next.ID)
		nc = &c
	}
	return domain.Page[domain.Transaction]{Data: page, NextCursor: nc}, nil
}

func (s *Service) ListEntries(ctx context.Context, q Query) (domain.Page[domain.Entry], error) {
	lq, err := s.validate(q)
	if err != nil {
		return domain.Page[domain.Entry]{}, err
	}
	rows, err := s.repo.ListEntries(ctx, lq)
	if err != nil {
		return domain.Page[domain.Entry]{}, errs.RepositoryError(err)
	}
	page, next := splitPageEntry(rows, lq.Limit)
	var nc *string
	if next != nil {
		c := cursor.Encode(next.CreatedAt, next.ID)
		nc = &c
	}
	return domain.Page[domain.Entry]{Data: page, NextCursor: nc}, nil
}

// TrialBalance returns the per-ledger trial balance. The ledger must exist
// for the calling tenant.
func (s *Service) TrialBalance(ctx context.Context, tenantID, ledgerID uuid.UUID) (domain.TrialBalance, error) {
	ok, err := s.repo.LedgerExists(ctx, tenantID, ledgerID)
	if err != nil {
		return domain.TrialBalance{}, errs.RepositoryError(err)
	}
	if !ok {
		return domain.TrialBalance{}, errs.LedgerNotFound(ledgerID.String())
	}
	tb, err := s.repo.TrialBalance(ctx, tenantID, ledgerID)
	if err != nil {
		return domain.TrialBalance{}, err
	}
	if tb.TotalDebitsMinor != tb.TotalCreditsMinor {
		return domain.TrialBalance{}, errs.RepositoryError(
			errMismatch(tb.TotalDebitsMinor, tb.TotalCreditsMinor))
	}
	return tb, nil
}

// splitPage, splitPageTx, and splitPageEntry truncate a Limit+1-row result to
// Limit rows and, when a further page exists, return the cursor anchor for
// it: the last row actually returned (index limit-1), not the dropped
// overflow row (index limit).

func splitPage(rows []domain.Account, limit int) ([]domain.Account, *domain.Account) {
	if len(rows) > limit {
		page := rows[:limit]
		last := page[limit-1]
		return page, &last
	}
	return rows, nil
}

func splitPageTx(rows []domain.Transaction, limit int) ([]domain.Transaction, *domain.Transaction) {
	if len(rows) > limit {
		page := rows[:limit]
		last := page[limit-1]
		return page, &last
	}
	return rows, nil
}

func splitPageEntry(rows []domain.Entry, limit int) ([]domain.Entry, *domain.Entry) {
	if len(rows) > limit {
		page := rows[:limit]
		last := page[limit-1]
		return page, &last
	}
	return rows, nil
}

type mismatchError struct {
	debits, credits int64
}

func (e mismatchError) Error() string {
	return "trial balance totals diverge"
}

func errMismatch(debits, credits int64) error {
	return mismatchError{debits: debits, credits: credits}
}
