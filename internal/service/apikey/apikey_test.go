package apikey_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llk-ledger/ledger/internal/domain"
	"github.com/llk-ledger/ledger/internal/errs"
	"github.com/llk-ledger/ledger/internal/service/apikey"
)

type fakeRepo struct {
	keys      map[string]domain.ApiKey // keyed by hash
	byID      map[uuid.UUID]domain.ApiKey
	tenants   int
	createErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{keys: map[string]domain.ApiKey{}, byID: map[uuid.UUID]domain.ApiKey{}}
}

func (f *fakeRepo) CreateApiKey(ctx context.Context, key domain.ApiKey) (domain.ApiKey, error) {
	if f.createErr != nil {
		return domain.ApiKey{}, f.createErr
	}
	key.ID = uuid.New()
	f.keys[key.KeyHash] = key
	f.byID[key.ID] = key
	return key, nil
}

func (f *fakeRepo) FindByHash(ctx context.Context, keyHash string) (domain.ApiKey, error) {
	k, ok := f.keys[keyHash]
	if !ok {
		return domain.ApiKey{}, errNotFound{}
	}
	return k, nil
}

func (f *fakeRepo) ListApiKeys(ctx context.Context, tenantID uuid.UUID) ([]domain.ApiKey, error) {
	var out []domain.ApiKey
	for _, k := range f.byID {
		if k.TenantID == tenantID {
			out = append(out, k)
		}
	}
	return out, nil
}

func (f *fakeRepo) RevokeApiKey(ctx context.Context, tenantID, apiKeyID uuid.UUID) (domain.ApiKey, error) {
	k, ok := f.byID[apiKeyID]
	if !ok || k.TenantID != tenantID {
		return domain.ApiKey{}, errs.InvariantViolation("API key not found")
	}
	return k, nil
}

func (f *fakeRepo) CountApiKeys(ctx context.Context) (int, error) {
	return len(f.byID), nil
}

func (f *fakeRepo) CreateTenant(ctx context.Context, name string) (domain.Tenant, error) {
	f.tenants++
	return domain.Tenant{ID: uuid.New(), Name: name}, nil
}

type errNotFound struct{}

func (errNotFound) Error() string { return "not found" }

func TestGenerateRawKey_HasExpectedShape(t *testing.T) {
	raw, err := apikey.GenerateRawKey()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw, "llk_"))
	assert.Len(t, raw, len("llk_")+64)
}

func TestAuthenticate_UnknownKeyIsUnauthorized(t *testing.T) {
	svc := apikey.New(newFakeRepo())

	_, err := svc.Authenticate(context.Background(), "llk_doesnotexist")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindUnauthorized))
}

func TestAuthenticate_EmptyCredentialIsUnauthorized(t *testing.T) {
	svc := apikey.New(newFakeRepo())

	_, err := svc.Authenticate(context.Background(), "  ")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindUnauthorized))
}

func TestCreateApiKey_RequiresAdminRole(t *testing.T) {
	repo := newFakeRepo()
	svc := apikey.New(repo)
	tenantID := uuid.New()
	actor := domain.AuthContext{TenantID: tenantID, Role: domain.RoleService}

	_, err := svc.CreateApiKey(context.Background(), actor, apikey.CreateApiKeyInput{
		TenantID: tenantID, Name: "svc-key", Role: domain.RoleService,
	})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindForbidden))
}

func TestCreateApiKey_RejectsCrossTenant(t *testing.T) {
	repo := newFakeRepo()
	svc := apikey.New(repo)
	actor := domain.AuthContext{TenantID: uuid.New(), Role: domain.RoleAdmin}

	_, err := svc.CreateApiKey(context.Background(), actor, apikey.CreateApiKeyInput{
		TenantID: uuid.New(), Name: "svc-key", Role: domain.RoleService,
	})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindForbidden))
}

func TestCreateApiKey_SuccessThenAuthenticate(t *testing.T) {
	repo := newFakeRepo()
	svc := apikey.New(repo)
	tenantID := uuid.New()
	actor := domain.AuthContext{TenantID: tenantID, Role: domain.RoleAdmin}

	created, err := svc.CreateApiKey(context.Background(), actor, apikey.CreateApiKeyInput{
		TenantID: tenantID, Name: "svc-key", Role: domain.RoleService,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.RawKey)

	ac, err := svc.Authenticate(context.Background(), created.RawKey)
	require.NoError(t, err)
	assert.Equal(t, tenantID, ac.TenantID)
	assert.Equal(t, domain.RoleService, ac.Role)
}

func TestBootstrapInitialAdmin_NoOpWhenKeysExist(t *testing.T) {
	repo := newFakeRepo()
	repo.byID[uuid.New()] = domain.ApiKey{}
	svc := apikey.New(repo)

	res, err := svc.BootstrapInitialAdmin(context.Background(), apikey.BootstrapInput{
		TenantName: "t", KeyName: "k", RawApiKey: "llk_seed",
	})
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, 0, repo.tenants)
}

func TestBootstrapInitialAdmin_CreatesTenantAndKey(t *testing.T) {
	repo := newFakeRepo()
	svc := apikey.New(repo)

	res, err := svc.BootstrapInitialAdmin(context.Background(), apikey.BootstrapInput{
		TenantName: "t", KeyName: "k", RawApiKey: "llk_seed",
	})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, 1, repo.tenants)
}
