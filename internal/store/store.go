// Package store implements the transactional Postgres repository: the
// idempotent posting write path, cursor-paginated listings, the trial
// balance scan, ledger CRUD, and API-key persistence. A single Store value
// satisfies the posting, read, ledger, and apikey service Repository
// interfaces.
package store

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/llk-ledger/ledger/internal/domain"
	"github.com/llk-ledger/ledger/internal/errs"
	"github.com/llk-ledger/ledger/internal/logging"
	"github.com/llk-ledger/ledger/internal/service/apikey"
	"github.com/llk-ledger/ledger/internal/service/ledger"
	"github.com/llk-ledger/ledger/internal/service/posting"
	"github.com/llk-ledger/ledger/internal/service/read"
)

type Store struct {
	pool *pgxpool.Pool
	log  *logging.Logger
}

func New(pool *pgxpool.Pool, log *logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	return &Store{pool: pool, log: log}
}

// withTenantTx opens a read-committed transaction, binds app.tenant_id as a
// transaction-local session variable (so row-level security policies apply
// for the lifetime of this transaction only), runs fn, and commits. The
// binding is torn down automatically when the transaction ends.
func withTenantTx[T any](ctx context.Context, pool *pgxpool.Pool, tenantID uuid.UUID, fn func(tx pgx.Tx) (T, error)) (T, error) {
	var zero T

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return zero, errs.RepositoryError(err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT set_config('app.tenant_id', $1, true)`, tenantID.String()); err != nil {
		return zero, errs.RepositoryError(err)
	}

	result, err := fn(tx)
	if err != nil {
		return zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return zero, errs.RepositoryError(err)
	}
	return result, nil
}

// classifyDBErr maps known Postgres constraint/data-exception classes to
// INVARIANT_VIOLATION; everything else is a REPOSITORY_ERROR.
func classifyDBErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case len(pgErr.Code) == 5 && pgErr.Code[:2] == "23": // integrity_constraint_violation (FK, unique, check, not-null)
			return errs.InvariantViolationf("constraint violation: %s", pgErr.Message)
		case len(pgErr.Code) == 5 && pgErr.Code[:2] == "22": // data_exception (type conversion, etc.)
			return errs.InvariantViolationf("data error: %s", pgErr.Message)
		}
	}
	return errs.RepositoryError(err)
}

// --- posting.Repository ---

var _ posting.Repository = (*Store)(nil)

func (s *Store) PostTransaction(ctx context.Context, req posting.Request) (posting.Result, error) {
	return withTenantTx(ctx, s.pool, req.TenantID, func(tx pgx.Tx) (posting.Result, error) {
		txnID := uuid.New()
		var insertedID uuid.UUID
		err := tx.QueryRow(ctx, `
			INSERT INTO transactions (id, tenant_id, ledger_id, reference, currency, created_at)
			VALUES ($1, $2, $3, $4, $5, now())
			ON CONFLICT (tenant_id, reference) DO NOTHING
			RETURNING id`,
			txnID, req.TenantID, req.LedgerID, req.Reference, req.Currency,
		).Scan(&insertedID)

		created := true
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			created = false
			var existingID uuid.UUID
			lookupErr := tx.QueryRow(ctx,
				`SELECT id FROM transactions WHERE tenant_id = $1 AND reference = $2`,
				req.TenantID, req.Reference,
			).Scan(&existingID)
			if lookupErr != nil {
				return posting.Result{}, errs.RepositoryError(lookupErr)
			}
			insertedID = existingID
		case err != nil:
			return posting.Result{}, classifyDBErr(err)
		}

		if !created {
			return posting.Result{TransactionID: insertedID, Created: false}, nil
		}

		if err := s.insertEntries(ctx, tx, req.TenantID, insertedID, req.Entries); err != nil {
			return posting.Result{}, err
		}

		if err := s.applyBalanceDeltas(ctx, tx, req); err != nil {
			return posting.Result{}, err
		}

		return posting.Result{TransactionID: insertedID, Created: true}, nil
	})
}

func (s *Store) insertEntries(ctx context.Context, tx pgx.Tx, tenantID, transactionID uuid.UUID, entries []posting.EntryInput) error {
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`
			INSERT INTO entries (id, tenant_id, transaction_id, account_id, direction, amount_minor, currency, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, now())`,
			uuid.New(), tenantID, transactionID, e.AccountID, string(e.Direction), e.AmountMinor, e.Currency,
		)
	}

	br := tx.SendBatch(ctx, batch)
	defer br.Close()
	for range entries {
		if _, err := br.Exec(); err != nil {
			return classifyDBErr(err)
		}
	}
	return nil
}

// applyBalanceDeltas applies one signed delta per distinct account touched by
// the transaction, in ascending account-id order, to impose a global lock
// order across concurrent postings. Any failure here -- including a
// numeric-range overflow on the balance column -- surfaces as
// REPOSITORY_ERROR; a row that doesn't match (id, tenant_id, ledger_id,
// currency) surfaces as INVARIANT_VIOLATION.
func (s *Store) applyBalanceDeltas(ctx context.Context, tx pgx.Tx, req posting.Request) error {
	deltas := make(map[uuid.UUID]int64, len(req.Entries))
	for _, e := range req.Entries {
		deltas[e.AccountID] += e.Direction.Delta(e.AmountMinor)
	}

	ids := make([]uuid.UUID, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := ids[i], ids[j]
		return bytes.Compare(a[:], b[:]) < 0
	})

	for _, id := range ids {
		ct, err := tx.Exec(ctx, `
			UPDATE accounts
			SET balance_minor = balance_minor + $1, updated_at = now()
			WHERE id = $2 AND tenant_id = $3 AND ledger_id = $4 AND currency = $5`,
			deltas[id], id, req.TenantID, req.LedgerID, req.Currency,
		)
		if err != nil {
			return errs.RepositoryError(err)
		}
		if ct.RowsAffected() == 0 {
			return errs.InvariantViolation("account ledger/currency mismatch")
		}
	}
	return nil
}

// --- read.Repository ---

var _ read.Repository = (*Store)(nil)

func (s *Store) ListAccounts(ctx context.Context, q read.ListQuery) ([]domain.Account, error) {
	return withTenantTx(ctx, s.pool, q.TenantID, func(tx pgx.Tx) ([]domain.Account, error) {
		rows, err := queryCursorPage(ctx, tx, `
			SELECT id, tenant_id, ledger_id, name, currency, balance_minor, created_at, updated_at
			FROM accounts WHERE tenant_id = $1`, q)
		if err != nil {
			return nil, classifyDBErr(err)
		}
		defer rows.Close()

		var out []domain.Account
		for rows.Next() {
			var a domain.Account
			if err := rows.Scan(&a.ID, &a.TenantID, &a.LedgerID, &a.Name, &a.Currency, &a.BalanceMinor, &a.CreatedAt, &a.UpdatedAt); err != nil {
				return nil, classifyDBErr(err)
			}
			out = append(out, a)
		}
		return out, rows.Err()
	})
}

func (s *Store) ListTransactions(ctx context.Context, q read.ListQuery) ([]domain.Transaction, error) {
	return withTenantTx(ctx, s.pool, q.TenantID, func(tx pgx.Tx) ([]domain.Transaction, error) {
		rows, err := queryCursorPage(ctx, tx, `
			SELECT id, tenant_id, ledger_id, reference, currency, created_at
			FROM transactions WHERE tenant_id = $1`, q)
		if err != nil {
			return nil, classifyDBErr(err)
		}
		defer rows.Close()

		var out []domain.Transaction
		for rows.Next() {
			var t domain.Transaction
			if err := rows.Scan(&t.ID, &t.TenantID, &t.LedgerID, &t.Reference, &t.Currency, &t.CreatedAt); err != nil {
				return nil, classifyDBErr(err)
			}
			out = append(out, t)
		}
		return out, rows.Err()
	})
}

func (s *Store) ListEntries(ctx context.Context, q read.ListQuery) ([]domain.Entry, error) {
	return withTenantTx(ctx, s.pool, q.TenantID, func(tx pgx.Tx) ([]domain.Entry, error) {
		rows, err := queryCursorPage(ctx, tx, `
			SELECT id, tenant_id, transaction_id, account_id, direction, amount_minor, currency, created_at
			FROM entries WHERE tenant_id = $1`, q)
		if err != nil {
			return nil, classifyDBErr(err)
		}
		defer rows.Close()

		var out []domain.Entry
		for rows.Next() {
			var e domain.Entry
			var dir string
			if err := rows.Scan(&e.ID, &e.TenantID, &e.TransactionID, &e.AccountID, &dir, &e.AmountMinor, &e.Currency, &e.CreatedAt); err != nil {
				return nil, classifyDBErr(err)
			}
			e.Direction = domain.Direction(dir)
			out = append(out, e)
		}
		return out, rows.Err()
	})
}

// queryCursorPage appends the cursor predicate and ordering shared by all
// three listings, requesting Limit+1 rows so the caller can detect whether a
// further page exists.
func queryCursorPage(ctx context.Context, tx pgx.Tx, baseQuery string, q read.ListQuery) (pgx.Rows, error) {
	query := baseQuery
	args := []interface{}{q.TenantID}

	if q.Cursor != nil {
		query += ` AND (created_at > $2 OR (created_at = $2 AND id > $3))`
		args = append(args, q.Cursor.CreatedAt, q.Cursor.ID)
	}
	query += ` ORDER BY created_at ASC, id ASC LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, q.Limit+1)

	return tx.Query(ctx, query, args...)
}

func (s *Store) TrialBalance(ctx context.Context, tenantID, ledgerID uuid.UUID) (domain.TrialBalance, error) {
	return withTenantTx(ctx, s.pool, tenantID, func(tx pgx.Tx) (domain.TrialBalance, error) {
		rows, err := tx.Query(ctx, `
			SELECT id, name, balance_minor FROM accounts
			WHERE tenant_id = $1 AND ledger_id = $2
			ORDER BY created_at ASC, id ASC`, tenantID, ledgerID)
		if err != nil {
			return domain.TrialBalance{}, classifyDBErr(err)
		}
		defer rows.Close()

		tb := domain.TrialBalance{LedgerID: ledgerID}
		for rows.Next() {
			var id uuid.UUID
			var name string
			var balance int64
			if err := rows.Scan(&id, &name, &balance); err != nil {
				return domain.TrialBalance{}, classifyDBErr(err)
			}
			normal := domain.ClassifyBalance(balance)
			abs := balance
			if abs < 0 {
				abs = -abs
			}
			tb.Lines = append(tb.Lines, domain.TrialBalanceLine{
				AccountID: id, Code: id, Name: name, Normal: normal, AbsoluteMinor: abs,
			})
			if normal == domain.DebitNormal {
				tb.TotalDebitsMinor += abs
			} else {
				tb.TotalCreditsMinor += abs
			}
		}
		return tb, rows.Err()
	})
}

func (s *Store) LedgerExists(ctx context.Context, tenantID, ledgerID uuid.UUID) (bool, error) {
	return withTenantTx(ctx, s.pool, tenantID, func(tx pgx.Tx) (bool, error) {
		var exists bool
		err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM ledgers WHERE tenant_id = $1 AND id = $2)`, tenantID, ledgerID).Scan(&exists)
		if err != nil {
			return false, classifyDBErr(err)
		}
		return exists, nil
	})
}

// --- ledger.Repository ---

var _ ledger.Repository = (*Store)(nil)

func (s *Store) CreateLedger(ctx context.Context, tenantID uuid.UUID, name string) (domain.Ledger, error) {
	return withTenantTx(ctx, s.pool, tenantID, func(tx pgx.Tx) (domain.Ledger, error) {
		var l domain.Ledger
		err := tx.QueryRow(ctx, `
			INSERT INTO ledgers (id, tenant_id, name, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
			RETURNING id, tenant_id, name, created_at, updated_at`,
			uuid.New(), tenantID, name,
		).Scan(&l.ID, &l.TenantID, &l.Name, &l.CreatedAt, &l.UpdatedAt)
		if err != nil {
			return domain.Ledger{}, classifyDBErr(err)
		}
		return l, nil
	})
}

func (s *Store) GetLedgerByID(ctx context.Context, tenantID, ledgerID uuid.UUID) (domain.Ledger, error) {
	return withTenantTx(ctx, s.pool, tenantID, func(tx pgx.Tx) (domain.Ledger, error) {
		var l domain.Ledger
		err := tx.QueryRow(ctx, `
			SELECT id, tenant_id, name, created_at, updated_at FROM ledgers
			WHERE tenant_id = $1 AND id = $2`, tenantID, ledgerID,
		).Scan(&l.ID, &l.TenantID, &l.Name, &l.CreatedAt, &l.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Ledger{}, errs.LedgerNotFound(ledgerID.String())
		}
		if err != nil {
			return domain.Ledger{}, classifyDBErr(err)
		}
		return l, nil
	})
}

func (s *Store) GetLedgersByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.Ledger, error) {
	return withTenantTx(ctx, s.pool, tenantID, func(tx pgx.Tx) ([]domain.Ledger, error) {
		rows, err := tx.Query(ctx, `
			SELECT id, tenant_id, name, created_at, updated_at FROM ledgers
			WHERE tenant_id = $1 ORDER BY created_at ASC, id ASC`, tenantID)
		if err != nil {
			return nil, classifyDBErr(err)
		}
		defer rows.Close()

		var out []domain.Ledger
		for rows.Next() {
			var l domain.Ledger
			if err := rows.Scan(&l.ID, &l.TenantID, &l.Name, &l.CreatedAt, &l.UpdatedAt); err != nil {
				return nil, classifyDBErr(err)
			}
			out = append(out, l)
		}
		return out, rows.Err()
	})
}

// --- apikey.Repository ---
//
// API-key bootstrap operations (CountApiKeys, CreateTenant) run before any
// tenant context exists, so they bypass the tenant-bound RLS helper; the
// database role owning these tables is expected to bypass row-level
// security for its own administrative reach (the standard Postgres
// behavior absent FORCE ROW LEVEL SECURITY).

var _ apikey.Repository = (*Store)(nil)

func (s *Store) CreateApiKey(ctx context.Context, key domain.ApiKey) (domain.ApiKey, error) {
	return withTenantTx(ctx, s.pool, key.TenantID, func(tx pgx.Tx) (domain.ApiKey, error) {
		var out domain.ApiKey
		err := tx.QueryRow(ctx, `
			INSERT INTO api_keys (id, tenant_id, name, role, key_hash, created_at)
			VALUES ($1, $2, $3, $4, $5, now())
			RETURNING id, tenant_id, name, role, created_at, revoked_at`,
			uuid.New(), key.TenantID, key.Name, string(key.Role), key.KeyHash,
		).Scan(&out.ID, &out.TenantID, &out.Name, &out.Role, &out.CreatedAt, &out.RevokedAt)
		if err != nil {
			return domain.ApiKey{}, classifyDBErr(err)
		}
		return out, nil
	})
}

func (s *Store) FindByHash(ctx context.Context, keyHash string) (domain.ApiKey, error) {
	var out domain.ApiKey
	err := s.pool.QueryRow(ctx, `
		SELECT id, tenant_id, name, role, created_at, revoked_at FROM api_keys
		WHERE key_hash = $1`, keyHash,
	).Scan(&out.ID, &out.TenantID, &out.Name, &out.Role, &out.CreatedAt, &out.RevokedAt)
	if err != nil {
		return domain.ApiKey{}, err
	}
	return out, nil
}

func (s *Store) ListApiKeys(ctx context.Context, tenantID uuid.UUID) ([]domain.ApiKey, error) {
	return withTenantTx(ctx, s.pool, tenantID, func(tx pgx.Tx) ([]domain.ApiKey, error) {
		rows, err := tx.Query(ctx, `
			SELECT id, tenant_id, name, role, created_at, revoked_at FROM api_keys
			WHERE tenant_id = $1 ORDER BY created_at ASC, id ASC`, tenantID)
		if err != nil {
			return nil, classifyDBErr(err)
		}
		defer rows.Close()

		var out []domain.ApiKey
		for rows.Next() {
			var k domain.ApiKey
			if err := rows.Scan(&k.ID, &k.TenantID, &k.Name, &k.Role, &k.CreatedAt, &k.RevokedAt); err != nil {
				return nil, classifyDBErr(err)
			}
			out = append(out, k)
		}
		return out, rows.Err()
	})
}

func (s *Store) RevokeApiKey(ctx context.Context, tenantID, apiKeyID uuid.UUID) (domain.ApiKey, error) {
	return withTenantTx(ctx, s.pool, tenantID, func(tx pgx.Tx) (domain.ApiKey, error) {
		var out domain.ApiKey
		err := tx.QueryRow(ctx, `
			UPDATE api_keys SET revoked_at = now()
			WHERE tenant_id = $1 AND id = $2 AND revoked_at IS NULL
			RETURNING id, tenant_id, name, role, created_at, revoked_at`,
			tenantID, apiKeyID,
		).Scan(&out.ID, &out.TenantID, &out.Name, &out.Role, &out.CreatedAt, &out.RevokedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ApiKey{}, errs.InvariantViolation("API key not found")
		}
		if err != nil {
			return domain.ApiKey{}, classifyDBErr(err)
		}
		return out, nil
	})
}

func (s *Store) CountApiKeys(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM api_keys`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) CreateTenant(ctx context.Context, name string) (domain.Tenant, error) {
	var t domain.Tenant
	err := s.pool.QueryRow(ctx, `
		INSERT INTO tenants (id, name, created_at) VALUES ($1, $2, now())
		RETURNING id, name, created_at`, uuid.New(), name,
	).Scan(&t.ID, &t.Name, &t.CreatedAt)
	if err != nil {
		return domain.Tenant{}, err
	}
	return t, nil
}
