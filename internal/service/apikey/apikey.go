// Package apikey implements API key issuance, hashing, authentication, and
// zero-state bootstrap.
package apikey

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"

	"github.com/llk-ledger/ledger/internal/domain"
	"github.com/llk-ledger/ledger/internal/errs"
)

const keyPrefix = "llk_"

// Repository is the persistence capability the API-key service depends on.
type Repository interface {
	CreateApiKey(ctx context.Context, key domain.ApiKey) (domain.ApiKey, error)
	FindByHash(ctx context.Context, keyHash string) (domain.ApiKey, error)
	ListApiKeys(ctx context.Context, tenantID uuid.UUID) ([]domain.ApiKey, error)
	RevokeApiKey(ctx context.Context, tenantID, apiKeyID uuid.UUID) (domain.ApiKey, error)
	CountApiKeys(ctx context.Context) (int, error)
	CreateTenant(ctx context.Context, name string) (domain.Tenant, error)
}

type Service struct {
	repo Repository
}

func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// GenerateRawKey produces a new opaque key: "llk_" followed by 64 hex
// characters (32 random bytes).
func GenerateRawKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return keyPrefix + hex.EncodeToString(buf), nil
}

func hashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Authenticate resolves a raw credential to an AuthContext. Only key hashes
// are ever compared; the raw key is never persisted.
func (s *Service) Authenticate(ctx context.Context, rawKey string) (domain.AuthContext, error) {
	rawKey = strings.TrimSpace(rawKey)
	if rawKey == "" {
		return domain.AuthContext{}, errs.Unauthorized("API key is required")
	}

	key, err := s.repo.FindByHash(ctx, hashKey(rawKey))
	if err != nil {
		return domain.AuthContext{}, errs.Unauthorized("Invalid API key")
	}
	if !key.Active() {
		return domain.AuthContext{}, errs.Unauthorized("Invalid API key")
	}

	return domain.AuthContext{ApiKeyID: key.ID, TenantID: key.TenantID, Role: key.Role}, nil
}

// CreateApiKeyInput is the validated input to CreateApiKey.
type CreateApiKeyInput struct {
	TenantID uuid.UUID
	Name     string
	Role     domain.Role
}

// CreatedApiKey carries the raw key material, returned exactly once.
type CreatedApiKey struct {
	RawKey string
	Key    domain.ApiKey
}

func (s *Service) CreateApiKey(ctx context.Context, actor domain.AuthContext, in CreateApiKeyInput) (CreatedApiKey, error) {
	if actor.Role != domain.RoleAdmin {
		return CreatedApiKey{}, errs.Forbidden("admin role required")
	}
	if actor.TenantID != in.TenantID {
		return CreatedApiKey{}, errs.Forbidden("cannot issue keys for another tenant")
	}
	if in.Name == "" {
		return CreatedApiKey{}, errs.InvariantViolation("name is required")
	}
	if !in.Role.Valid() {
		return CreatedApiKey{}, errs.InvariantViolationf("invalid role: %q", in.Role)
	}

	raw, err := GenerateRawKey()
	if err != nil {
		return CreatedApiKey{}, errs.RepositoryError(err)
	}

	created, err := s.repo.CreateApiKey(ctx, domain.ApiKey{
		TenantID: in.TenantID,
		Name:     in.Name,
		Role:     in.Role,
		KeyHash:  hashKey(raw),
	})
	if err != nil {
		return CreatedApiKey{}, errs.RepositoryError(err)
	}

	return CreatedApiKey{RawKey: raw, Key: created}, nil
}

func (s *Service) ListApiKeys(ctx context.Context, actor domain.AuthContext) ([]domain.ApiKey, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, errs.Forbidden("admin role required")
	}
	keys, err := s.repo.ListApiKeys(ctx, actor.TenantID)
	if err != nil {
		return nil, errs.RepositoryError(err)
	}
	return keys, nil
}

func (s *Service) RevokeApiKey(ctx context.Context, actor domain.AuthContext, apiKeyID uuid.UUID) error {
	if actor.Role != domain.RoleAdmin {
		return errs.Forbidden("admin role required")
	}
	_, err := s.repo.RevokeApiKey(ctx, actor.TenantID, apiKeyID)
	if err != nil {
		if errs.Is(err, errs.KindInvariantViolation) {
			return err
		}
		return errs.RepositoryError(err)
	}
	return nil
}

// BootstrapInput provisions the very first tenant and admin key.
type BootstrapInput struct {
	TenantName string
	KeyName    string
	RawApiKey  string
}

type BootstrapResult struct {
	Created  bool
	TenantID uuid.UUID
	ApiKeyID uuid.UUID
}

// BootstrapInitialAdmin is idempotent: once any key exists in the system, it
// is a no-op.
func (s *Service) BootstrapInitialAdmin(ctx context.Context, in BootstrapInput) (BootstrapResult, error) {
	count, err := s.repo.CountApiKeys(ctx)
	if err != nil {
		return BootstrapResult{}, errs.RepositoryError(err)
	}
	if count > 0 {
		return BootstrapResult{Created: false}, nil
	}

	tenant, err := s.repo.CreateTenant(ctx, in.TenantName)
	if err != nil {
		return BootstrapResult{}, errs.RepositoryError(err)
	}

	key, err := s.repo.CreateApiKey(ctx, domain.ApiKey{
		TenantID: tenant.ID,
		Name:     in.KeyName,
		Role:     domain.RoleAdmin,
		KeyHash:  hashKey(in.RawApiKey),
	})
	if err != nil {
		return BootstrapResult{}, errs.RepositoryError(err)
	}

	return BootstrapResult{Created: true, TenantID: tenant.ID, ApiKeyID: key.ID}, nil
}
