package httpapi

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/llk-ledger/ledger/internal/domain"
)

// All monetary values cross the wire as decimal strings to preserve 64-bit
// precision in clients whose numeric type is a float (JavaScript et al).

type accountView struct {
	ID           uuid.UUID `json:"id"`
	TenantID     uuid.UUID `json:"tenant_id"`
	LedgerID     uuid.UUID `json:"ledger_id"`
	Name         string    `json:"name"`
	Currency     string    `json:"currency"`
	BalanceMinor string    `json:"balance_minor"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toAccountView(a domain.Account) accountView {
	return accountView{
		ID: a.ID, TenantID: a.TenantID, LedgerID: a.LedgerID, Name: a.Name, Currency: a.Currency,
		BalanceMinor: strconv.FormatInt(a.BalanceMinor, 10),
		CreatedAt:    a.CreatedAt, UpdatedAt: a.UpdatedAt,
	}
}

type transactionView struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	LedgerID  uuid.UUID `json:"ledger_id"`
	Reference string    `json:"reference"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

func toTransactionView(t domain.Transaction) transactionView {
	return transactionView{
		ID: t.ID, TenantID: t.TenantID, LedgerID: t.LedgerID, Reference: t.Reference,
		Currency: t.Currency, CreatedAt: t.CreatedAt,
	}
}

type entryView struct {
	ID            uuid.UUID `json:"id"`
	TenantID      uuid.UUID `json:"tenant_id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	AccountID     uuid.UUID `json:"account_id"`
	Direction     string    `json:"direction"`
	AmountMinor   string    `json:"amount_minor"`
	Currency      string    `json:"currency"`
	CreatedAt     time.Time `json:"created_at"`
}

func toEntryView(e domain.Entry) entryView {
	return entryView{
		ID: e.ID, TenantID: e.TenantID, TransactionID: e.TransactionID, AccountID: e.AccountID,
		Direction: string(e.Direction), AmountMinor: strconv.FormatInt(e.AmountMinor, 10),
		Currency: e.Currency, CreatedAt: e.CreatedAt,
	}
}

type trialBalanceLineView struct {
	AccountID     uuid.UUID `json:"account_id"`
	Code          uuid.UUID `json:"code"`
	Name          string    `json:"name"`
	NormalBalance string    `json:"normal_balance"`
	AbsoluteMinor string    `json:"absolute_minor"`
}

type trialBalanceView struct {
	LedgerID          uuid.UUID              `json:"ledger_id"`
	Lines             []trialBalanceLineView `json:"lines"`
	TotalDebitsMinor  string                 `json:"total_debits_minor"`
	TotalCreditsMinor string                 `json:"total_credits_minor"`
}

func toTrialBalanceView(tb domain.TrialBalance) trialBalanceView {
	lines := make([]trialBalanceLineView, 0, len(tb.Lines))
	for _, l := range tb.Lines {
		lines = append(lines, trialBalanceLineView{
			AccountID: l.AccountID, Code: l.Code, Name: l.Name,
			NormalBalance: string(l.Normal), AbsoluteMinor: strconv.FormatInt(l.AbsoluteMinor, 10),
		})
	}
	return trialBalanceView{
		LedgerID: tb.LedgerID, Lines: lines,
		TotalDebitsMinor:  strconv.FormatInt(tb.TotalDebitsMinor, 10),
		TotalCreditsMinor: strconv.FormatInt(tb.TotalCreditsMinor, 10),
	}
}

type pageView[T any] struct {
	Data       []T     `json:"data"`
	NextCursor *string `json:"next_cursor"`
}
