package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/arcadialabs/landgrid-backend/internal/ledger"
	"github.com/arcadialabs/landgrid-backend/internal/regions"
	"github.com/arcadialabs/landgrid-backend/internal/registry"
	pkgAuth "github.com/arcadialabs/landgrid-backend/pkg/auth"
	"github.com/arcadialabs/landgrid-backend/pkg/auth/session"
	"github.com/arcadialabs/landgrid-backend/pkg/config"
	"github.com/arcadialabs/landgrid-backend/pkg/db/models"
	"github.com/arcadialabs/landgrid-backend/pkg/enums"
	"github.com/arcadialabs/landgrid-backend/pkg/logger"
	"github.com/arcadialabs/landgrid-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func (stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	return "refresh", nil
}

func (stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return "", "", nil
}

func (stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	return nil
}

type stubRegistryService struct{}

func (stubRegistryService) Get(ctx context.Context, parcelID string) (*registry.Parcel, error) {
	return &registry.Parcel{ParcelID: parcelID}, nil
}

func (stubRegistryService) List(ctx context.Context, input registry.ListInput) (*registry.ListResult, error) {
	return &registry.ListResult{Page: input.Page}, nil
}

func (stubRegistryService) Filter(ctx context.Context, input registry.FilterInput) ([]registry.Parcel, error) {
	return nil, nil
}

func (stubRegistryService) Statistics(ctx context.Context, input registry.StatisticsInput) (*registry.Statistics, error) {
	return &registry.Statistics{}, nil
}

type stubLedgerService struct{}

func (stubLedgerService) Purchase(ctx context.Context, input ledger.PurchaseInput) (*models.ParcelState, error) {
	return &models.ParcelState{}, nil
}

func (stubLedgerService) ListForSale(ctx context.Context, input ledger.ListForSaleInput) (*models.ParcelState, error) {
	return &models.ParcelState{}, nil
}

func (stubLedgerService) Delist(ctx context.Context, input ledger.DelistInput) (*models.ParcelState, error) {
	return &models.ParcelState{}, nil
}

func (stubLedgerService) BuildHouse(ctx context.Context, input ledger.BuildHouseInput) (*models.ParcelState, error) {
	return &models.ParcelState{}, nil
}

func (stubLedgerService) PurchaseLicense(ctx context.Context, input ledger.PurchaseLicenseInput) (*models.ParcelState, error) {
	return &models.ParcelState{}, nil
}

func (stubLedgerService) RemoveLicense(ctx context.Context, input ledger.RemoveLicenseInput) (*models.ParcelState, error) {
	return &models.ParcelState{}, nil
}

func (stubLedgerService) RecordRevenue(ctx context.Context, input ledger.RecordRevenueInput) (*models.ParcelState, error) {
	return &models.ParcelState{}, nil
}

func (stubLedgerService) OwnershipHistory(ctx context.Context, parcelID string) ([]models.OwnershipTransfer, error) {
	return nil, nil
}

func (stubLedgerService) OwnerParcels(ctx context.Context, regionID, owner string) ([]models.ParcelState, error) {
	return nil, nil
}

func (stubLedgerService) Reconcile(ctx context.Context, parcelID string) (*models.ParcelState, error) {
	return &models.ParcelState{}, nil
}

type stubRegionsService struct{}

func (stubRegionsService) CreateWorld(ctx context.Context, input regions.CreateWorldInput) (*models.World, error) {
	return &models.World{}, nil
}

func (stubRegionsService) GetWorld(ctx context.Context, worldID string) (*models.World, error) {
	return &models.World{ID: worldID}, nil
}

func (stubRegionsService) CreateRegion(ctx context.Context, input regions.CreateRegionInput) (*models.Region, error) {
	return &models.Region{}, nil
}

func (stubRegionsService) GetRegion(ctx context.Context, regionID string) (*models.Region, error) {
	return &models.Region{ID: regionID}, nil
}

func (stubRegionsService) ListRegions(ctx context.Context, worldID string) ([]models.Region, error) {
	return nil, nil
}

func (stubRegionsService) OpenCampaign(ctx context.Context, input regions.OpenCampaignInput) (*models.ExpansionCampaign, error) {
	return &models.ExpansionCampaign{}, nil
}

func (stubRegionsService) Allocate(ctx context.Context, input regions.AllocateInput) (*regions.AllocationResult, error) {
	return &regions.AllocationResult{}, nil
}

func (stubRegionsService) CloseCampaign(ctx context.Context, campaignID uuid.UUID) (*models.ExpansionCampaign, error) {
	return &models.ExpansionCampaign{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
			RefreshTTLHours:   2,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		stubSessionManager{},
		stubRegistryService{},
		stubLedgerService{},
		stubRegionsService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config, wallet string, role enums.ActorRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		Wallet: wallet,
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestPublicPingNeedsNoToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/public/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, "0xplayer", enums.ActorRolePlayer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestParcelReadRequiresAuth(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/parcels/genesis-12", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestParcelReadSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/parcels/genesis-12", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, "0xplayer", enums.ActorRolePlayer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRegionParcelsSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/regions/genesis/parcels", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, "0xplayer", enums.ActorRolePlayer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	nonAdmin := httptest.NewRequest(http.MethodGet, "/api/v1/admin/ping", nil)
	nonAdmin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, "0xplayer", enums.ActorRolePlayer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, nonAdmin)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/admin/ping", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, "0xadmin", enums.ActorRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestReconcileRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	nonAdmin := httptest.NewRequest(http.MethodPost, "/api/v1/admin/parcels/genesis-12/reconcile", nil)
	nonAdmin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, "0xplayer", enums.ActorRolePlayer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, nonAdmin)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin reconcile got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodPost, "/api/v1/admin/parcels/genesis-12/reconcile", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, "0xadmin", enums.ActorRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin reconcile got %d", resp.Code)
	}
}
