package posting_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llk-ledger/ledger/internal/domain"
	"github.com/llk-ledger/ledger/internal/errs"
	"github.com/llk-ledger/ledger/internal/service/posting"
)

type fakeRepo struct {
	result posting.Result
	err    error
	calls  int
	last   posting.Request
}

func (f *fakeRepo) PostTransaction(ctx context.Context, req posting.Request) (posting.Result, error) {
	f.calls++
	f.last = req
	return f.result, f.err
}

func newRequest(entries ...posting.EntryInput) posting.Request {
	return posting.Request{
		TenantID:  uuid.New(),
		LedgerID:  uuid.New(),
		Reference: "ref-1",
		Currency:  "USD",
		Entries:   entries,
	}
}

func TestPostTransaction_Balanced(t *testing.T) {
	repo := &fakeRepo{result: posting.Result{TransactionID: uuid.New(), Created: true}}
	svc := posting.New(repo, nil)

	req := newRequest(
		posting.EntryInput{AccountID: uuid.New(), Direction: domain.DEBIT, AmountMinor: 100, Currency: "USD"},
		posting.EntryInput{AccountID: uuid.New(), Direction: domain.CREDIT, AmountMinor: 100, Currency: "USD"},
	)

	res, err := svc.PostTransaction(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, 1, repo.calls)
}

func TestPostTransaction_Unbalanced(t *testing.T) {
	repo := &fakeRepo{}
	svc := posting.New(repo, nil)

	req := newRequest(
		posting.EntryInput{AccountID: uuid.New(), Direction: domain.DEBIT, AmountMinor: 100, Currency: "USD"},
		posting.EntryInput{AccountID: uuid.New(), Direction: domain.CREDIT, AmountMinor: 50, Currency: "USD"},
	)

	_, err := svc.PostTransaction(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindInvariantViolation))
	assert.Equal(t, 0, repo.calls, "repository must not be called for an invalid request")
}

func TestPostTransaction_Validation(t *testing.T) {
	tests := []struct {
		name    string
		entries []posting.EntryInput
	}{
		{"too few entries", []posting.EntryInput{{AccountID: uuid.New(), Direction: domain.DEBIT, AmountMinor: 100, Currency: "USD"}}},
		{"zero amount", []posting.EntryInput{
			{AccountID: uuid.New(), Direction: domain.DEBIT, AmountMinor: 0, Currency: "USD"},
			{AccountID: uuid.New(), Direction: domain.CREDIT, AmountMinor: 0, Currency: "USD"},
		}},
		{"invalid direction", []posting.EntryInput{
			{AccountID: uuid.New(), Direction: "SIDEWAYS", AmountMinor: 100, Currency: "USD"},
			{AccountID: uuid.New(), Direction: domain.CREDIT, AmountMinor: 100, Currency: "USD"},
		}},
		{"currency mismatch", []posting.EntryInput{
			{AccountID: uuid.New(), Direction: domain.DEBIT, AmountMinor: 100, Currency: "EUR"},
			{AccountID: uuid.New(), Direction: domain.CREDIT, AmountMinor: 100, Currency: "USD"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{}
			svc := posting.New(repo, nil)
			req := newRequest(tt.entries...)

			_, err := svc.PostTransaction(context.Background(), req)
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.KindInvariantViolation))
		})
	}
}

func TestPostTransaction_RepositoryErrorPropagates(t *testing.T) {
	repo := &fakeRepo{err: errs.RepositoryError(assertErr{})}
	svc := posting.New(repo, nil)

	req := newRequest(
		posting.EntryInput{AccountID: uuid.New(), Direction: domain.DEBIT, AmountMinor: 100, Currency: "USD"},
		posting.EntryInput{AccountID: uuid.New(), Direction: domain.CREDIT, AmountMinor: 100, Currency: "USD"},
	)

	_, err := svc.PostTransaction(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindRepositoryError))
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
