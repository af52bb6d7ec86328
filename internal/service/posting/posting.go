// Package posting implements the balanced double-entry write path,
// PostTransaction.
package posting

import (
	"context"

	"github.com/google/uuid"

	"github.com/llk-ledger/ledger/internal/domain"
	"github.com/llk-ledger/ledger/internal/errs"
	"github.com/llk-ledger/ledger/internal/logging"
)

// EntryInput is one leg of a posting request.
type EntryInput struct {
	AccountID   uuid.UUID
	Direction   domain.Direction
	AmountMinor int64
	Currency    string
}

// Request is the input to PostTransaction.
type Request struct {
	TenantID  uuid.UUID
	LedgerID  uuid.UUID
	Reference string
	Currency  string
	Entries   []EntryInput
}

// Result is the outcome of PostTransaction.
type Result struct {
	TransactionID uuid.UUID
	Created       bool
}

// Repository is the persistence capability PostTransaction depends on. A
// single store.Store implementation satisfies this alongside the read and
// api-key repository interfaces.
type Repository interface {
	PostTransaction(ctx context.Context, req Request) (Result, error)
}

type Service struct {
	repo Repository
	log  *logging.Logger
}

func New(repo Repository, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{repo: repo, log: log}
}

// PostTransaction validates the balancing invariant in-process, then
// delegates to the repository to perform the atomic, idempotent write.
func (s *Service) PostTransaction(ctx context.Context, req Request) (Result, error) {
	if err := validate(req); err != nil {
		return Result{}, err
	}

	res, err := s.repo.PostTransaction(ctx, req)
	if err != nil {
		s.log.Error("post_transaction failed", err, logging.Fields{
			"tenant_id": req.TenantID.String(),
			"ledger_id": req.LedgerID.String(),
			"reference": req.Reference,
		})
		return Result{}, err
	}
	return res, nil
}

func validate(req Request) error {
	if len(req.Entries) < 2 {
		return errs.InvariantViolation("a transaction requires at least 2 entries")
	}
	if req.Reference == "" {
		return errs.InvariantViolation("reference is required")
	}
	if req.Currency == "" {
		return errs.InvariantViolation("currency is required")
	}

	var debits, credits int64
	for _, e := range req.Entries {
		if e.AmountMinor <= 0 {
			return errs.InvariantViolation("entry amount must be positive")
		}
		if !e.Direction.Valid() {
			return errs.InvariantViolationf("invalid entry direction: %q", e.Direction)
		}
		if e.Currency != req.Currency {
			return errs.InvariantViolationf("entry currency %q does not match transaction currency %q", e.Currency, req.Currency)
		}
		switch e.Direction {
		case domain.DEBIT:
			debits += e.AmountMinor
		case domain.CREDIT:
			credits += e.AmountMinor
		}
	}

	if debits != credits {
		return errs.InvariantViolationf("unbalanced transaction: debits=%d credits=%d", debits, credits)
	}

	return nil
}
