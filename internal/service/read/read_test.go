package read_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llk-ledger/ledger/internal/cursor"
	"github.com/llk-ledger/ledger/internal/domain"
	"github.com/llk-ledger/ledger/internal/errs"
	"github.com/llk-ledger/ledger/internal/service/read"
)

type fakeRepo struct {
	accounts     []domain.Account
	ledgerExists bool
	trialBalance domain.TrialBalance
	trialErr     error
}

func (f *fakeRepo) ListAccounts(ctx context.Context, q read.ListQuery) ([]domain.Account, error) {
	if q.Cursor == nil {
		return f.accounts, nil
	}
	var out []domain.Account
	for _, a := range f.accounts {
		if a.CreatedAt.After(q.Cursor.CreatedAt) {
			out = append(out, a)
		}
	}
	return out, nil
}
func (f *fakeRepo) ListTransactions(ctx context.Context, q read.ListQuery) ([]domain.Transaction, error) {
	return nil, nil
}
func (f *fakeRepo) ListEntries(ctx context.Context, q read.ListQuery) ([]domain.Entry, error) {
	return nil, nil
}
func (f *fakeRepo) TrialBalance(ctx context.Context, tenantID, ledgerID uuid.UUID) (domain.TrialBalance, error) {
	return f.trialBalance, f.trialErr
}
func (f *fakeRepo) LedgerExists(ctx context.Context, tenantID, ledgerID uuid.UUID) (bool, error) {
	return f.ledgerExists, nil
}

func newAccounts(n int) []domain.Account {
	out := make([]domain.Account, n)
	base := time.Now().UTC()
	for i := range out {
		out[i] = domain.Account{ID: uuid.New(), CreatedAt: base.Add(time.Duration(i) * time.Second)}
	}
	return out
}

func TestListAccounts_PageTruncationAndCursor(t *testing.T) {
	repo := &fakeRepo{accounts: newAccounts(6)}
	svc := read.New(repo)
	tenantID := uuid.New()

	limit := 5
	page, err := svc.ListAccounts(context.Background(), read.Query{TenantID: tenantID, Limit: &limit})
	require.NoError(t, err)
	assert.Len(t, page.Data, 5)
	require.NotNil(t, page.NextCursor)

	// The cursor anchors to the last row actually returned (index 4, the 5th
	// account), not the dropped 6th overflow row -- otherwise the 6th account
	// would never be delivered to any page.
	decoded, err := cursor.Decode(*page.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, repo.accounts[4].ID, decoded.ID)

	rawCursor := *page.NextCursor
	nextPage, err := svc.ListAccounts(context.Background(), read.Query{TenantID: tenantID, Limit: &limit, RawCursor: &rawCursor})
	require.NoError(t, err)
	require.Len(t, nextPage.Data, 1)
	assert.Equal(t, repo.accounts[5].ID, nextPage.Data[0].ID)
}

func TestListAccounts_NoNextPage(t *testing.T) {
	repo := &fakeRepo{accounts: newAccounts(3)}
	svc := read.New(repo)

	limit := 5
	page, err := svc.ListAccounts(context.Background(), read.Query{TenantID: uuid.New(), Limit: &limit})
	require.NoError(t, err)
	assert.Len(t, page.Data, 3)
	assert.Nil(t, page.NextCursor)
}

func TestListAccounts_InvalidLimit(t *testing.T) {
	repo := &fakeRepo{}
	svc := read.New(repo)

	limit := 0
	_, err := svc.ListAccounts(context.Background(), read.Query{TenantID: uuid.New(), Limit: &limit})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindInvariantViolation))
}

func TestListAccounts_InvalidCursor(t *testing.T) {
	repo := &fakeRepo{}
	svc := read.New(repo)

	bogus := "not-base64-json!!"
	_, err := svc.ListAccounts(context.Background(), read.Query{TenantID: uuid.New(), RawCursor: &bogus})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindInvariantViolation))
}

func TestListAccounts_MissingTenant(t *testing.T) {
	repo := &fakeRepo{}
	svc := read.New(repo)

	_, err := svc.ListAccounts(context.Background(), read.Query{})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindInvariantViolation))
}

func TestTrialBalance_LedgerNotFound(t *testing.T) {
	repo := &fakeRepo{ledgerExists: false}
	svc := read.New(repo)

	_, err := svc.TrialBalance(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindLedgerNotFound))
}

func TestTrialBalance_MismatchIsRepositoryError(t *testing.T) {
	repo := &fakeRepo{
		ledgerExists: true,
		trialBalance: domain.TrialBalance{TotalDebitsMinor: 100, TotalCreditsMinor: 90},
	}
	svc := read.New(repo)

	_, err := svc.TrialBalance(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindRepositoryError))
}

func TestTrialBalance_Balanced(t *testing.T) {
	repo := &fakeRepo{
		ledgerExists: true,
		trialBalance: domain.TrialBalance{TotalDebitsMinor: 100, TotalCreditsMinor: 100},
	}
	svc := read.New(repo)

	tb, err := svc.TrialBalance(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(100), tb.TotalDebitsMinor)
}
