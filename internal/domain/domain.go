// Package domain holds the core entity types of the ledger: tenants,
// ledgers, accounts, transactions, entries, and API keys.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Ledger struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Account balances are signed minor units: CREDIT entries increase the
// balance, DEBIT entries decrease it (see Direction.Delta).
type Account struct {
	ID           uuid.UUID `json:"id"`
	TenantID     uuid.UUID `json:"tenant_id"`
	LedgerID     uuid.UUID `json:"ledger_id"`
	Name         string    `json:"name"`
	Currency     string    `json:"currency"`
	BalanceMinor int64     `json:"balance_minor"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Transaction struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	LedgerID  uuid.UUID `json:"ledger_id"`
	Reference string    `json:"reference"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

// Direction is the side of a double-entry posting.
type Direction string

const (
	DEBIT  Direction = "DEBIT"
	CREDIT Direction = "CREDIT"
)

func (d Direction) Valid() bool {
	return d == DEBIT || d == CREDIT
}

// Delta returns the signed contribution a posting of this direction makes to
// an account balance: DEBIT decreases, CREDIT increases.
func (d Direction) Delta(amountMinor int64) int64 {
	if d == DEBIT {
		return -amountMinor
	}
	return amountMinor
}

type Entry struct {
	ID            uuid.UUID `json:"id"`
	TenantID      uuid.UUID `json:"tenant_id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	AccountID     uuid.UUID `json:"account_id"`
	Direction     Direction `json:"direction"`
	AmountMinor   int64     `json:"amount_minor"`
	Currency      string    `json:"currency"`
	CreatedAt     time.Time `json:"created_at"`
}

// Role gates administrative operations.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleService Role = "SERVICE"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleService
}

type ApiKey struct {
	ID        uuid.UUID  `json:"id"`
	TenantID  uuid.UUID  `json:"tenant_id"`
	Name      string     `json:"name"`
	Role      Role       `json:"role"`
	KeyHash   string     `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

func (k ApiKey) Active() bool {
	return k.RevokedAt == nil
}

// AuthContext is the identity resolved from a request's credential.
type AuthContext struct {
	ApiKeyID uuid.UUID
	TenantID uuid.UUID
	Role     Role
}

// NormalBalance classifies an account for trial-balance reporting. Per the
// data model, an account with a zero balance is classified DEBIT normal --
// a fixed convention, not derived from a chart-of-accounts type.
type NormalBalance string

const (
	DebitNormal  NormalBalance = "DEBIT"
	CreditNormal NormalBalance = "CREDIT"
)

func ClassifyBalance(balanceMinor int64) NormalBalance {
	if balanceMinor <= 0 {
		return DebitNormal
	}
	return CreditNormal
}

// TrialBalanceLine is one row of a trial balance report. Code is modeled as
// the account id; no chart-of-accounts code exists in the data model.
type TrialBalanceLine struct {
	AccountID     uuid.UUID     `json:"account_id"`
	Code          uuid.UUID     `json:"code"`
	Name          string        `json:"name"`
	Normal        NormalBalance `json:"normal_balance"`
	AbsoluteMinor int64         `json:"absolute_minor"`
}

type TrialBalance struct {
	LedgerID          uuid.UUID          `json:"ledger_id"`
	Lines             []TrialBalanceLine `json:"lines"`
	TotalDebitsMinor  int64              `json:"total_debits_minor"`
	TotalCreditsMinor int64              `json:"total_credits_minor"`
}

// Page is the generic cursor-paginated response shape shared by all listings.
type Page[T any] struct {
	Data       []T     `json:"data"`
	NextCursor *string `json:"next_cursor"`
}
