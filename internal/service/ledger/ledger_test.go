package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llk-ledger/ledger/internal/domain"
	"github.com/llk-ledger/ledger/internal/errs"
	"github.com/llk-ledger/ledger/internal/service/ledger"
)

type fakeRepo struct {
	created domain.Ledger
	get     domain.Ledger
	getErr  error
	byTen   []domain.Ledger
}

func (f *fakeRepo) CreateLedger(ctx context.Context, tenantID uuid.UUID, name string) (domain.Ledger, error) {
	return f.created, nil
}
func (f *fakeRepo) GetLedgerByID(ctx context.Context, tenantID, ledgerID uuid.UUID) (domain.Ledger, error) {
	return f.get, f.getErr
}
func (f *fakeRepo) GetLedgersByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.Ledger, error) {
	return f.byTen, nil
}

func TestCreateLedger_RequiresTenantAndName(t *testing.T) {
	svc := ledger.New(&fakeRepo{})

	_, err := svc.CreateLedger(context.Background(), uuid.Nil, "ops")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindInvariantViolation))

	_, err = svc.CreateLedger(context.Background(), uuid.New(), "")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindInvariantViolation))
}

func TestCreateLedger_Success(t *testing.T) {
	want := domain.Ledger{ID: uuid.New(), Name: "ops"}
	svc := ledger.New(&fakeRepo{created: want})

	got, err := svc.CreateLedger(context.Background(), uuid.New(), "ops")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
}

func TestGetLedgerByID_NotFoundPassesThrough(t *testing.T) {
	svc := ledger.New(&fakeRepo{getErr: errs.LedgerNotFound("missing")})

	_, err := svc.GetLedgerByID(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindLedgerNotFound))
}

func TestGetLedgerByID_OtherErrorWrapped(t *testing.T) {
	svc := ledger.New(&fakeRepo{getErr: errors.New("connection reset")})

	_, err := svc.GetLedgerByID(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindRepositoryError))
}
