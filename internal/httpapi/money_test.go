package httpapi

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/llk-ledger/ledger/internal/domain"
)

func TestToAccountView_BalanceAsDecimalString(t *testing.T) {
	a := domain.Account{
		ID: uuid.New(), TenantID: uuid.New(), LedgerID: uuid.New(),
		Name: "cash", Currency: "USD", BalanceMinor: -12345,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}

	v := toAccountView(a)
	assert.Equal(t, "-12345", v.BalanceMinor)
}

func TestToEntryView_AmountAsDecimalString(t *testing.T) {
	e := domain.Entry{
		ID: uuid.New(), TenantID: uuid.New(), TransactionID: uuid.New(), AccountID: uuid.New(),
		Direction: domain.CREDIT, AmountMinor: 9223372036854775807, Currency: "USD", CreatedAt: time.Now(),
	}

	v := toEntryView(e)
	assert.Equal(t, "9223372036854775807", v.AmountMinor)
	assert.Equal(t, "CREDIT", v.Direction)
}

func TestToTrialBalanceView_Totals(t *testing.T) {
	tb := domain.TrialBalance{
		LedgerID: uuid.New(),
		Lines: []domain.TrialBalanceLine{
			{AccountID: uuid.New(), Normal: domain.DebitNormal, AbsoluteMinor: 100},
		},
		TotalDebitsMinor:  100,
		TotalCreditsMinor: 100,
	}

	v := toTrialBalanceView(tb)
	assert.Equal(t, "100", v.TotalDebitsMinor)
	assert.Equal(t, "100", v.TotalCreditsMinor)
	assert.Len(t, v.Lines, 1)
	assert.Equal(t, "DEBIT", v.Lines[0].NormalBalance)
}
