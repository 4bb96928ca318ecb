package regions

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arcadialabs/landgrid-backend/pkg/config"
	"github.com/arcadialabs/landgrid-backend/pkg/db/models"
	"github.com/arcadialabs/landgrid-backend/pkg/enums"
	pkgerrors "github.com/arcadialabs/landgrid-backend/pkg/errors"
	"github.com/arcadialabs/landgrid-backend/pkg/logger"
	"github.com/arcadialabs/landgrid-backend/pkg/outbox"
)

type fakeRepo struct {
	worlds      map[string]*models.World
	regions     map[string]*models.Region
	campaigns   map[uuid.UUID]*models.ExpansionCampaign
	allocations map[string]models.CampaignAllocation
	states      map[string]models.ParcelState
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		worlds:      make(map[string]*models.World),
		regions:     make(map[string]*models.Region),
		campaigns:   make(map[uuid.UUID]*models.ExpansionCampaign),
		allocations: make(map[string]models.CampaignAllocation),
		states:      make(map[string]models.ParcelState),
	}
}

func (f *fakeRepo) WithTx(_ *gorm.DB) Repository { return f }

func (f *fakeRepo) CreateWorld(_ context.Context, world *models.World) error {
	if _, exists := f.worlds[world.ID]; exists {
		return fmt.Errorf("duplicate key value violates unique constraint")
	}
	copied := *world
	f.worlds[world.ID] = &copied
	return nil
}

func (f *fakeRepo) FindWorld(_ context.Context, worldID string) (*models.World, error) {
	world, ok := f.worlds[worldID]
	if !ok {
		return nil, nil
	}
	copied := *world
	return &copied, nil
}

func (f *fakeRepo) SaveWorld(_ context.Context, world *models.World) error {
	copied := *world
	f.worlds[world.ID] = &copied
	return nil
}

func (f *fakeRepo) CreateRegion(_ context.Context, region *models.Region) error {
	if _, exists := f.regions[region.ID]; exists {
		return fmt.Errorf("duplicate key value violates unique constraint")
	}
	copied := *region
	f.regions[region.ID] = &copied
	return nil
}

func (f *fakeRepo) FindRegion(_ context.Context, regionID string) (*models.Region, error) {
	region, ok := f.regions[regionID]
	if !ok {
		return nil, nil
	}
	copied := *region
	return &copied, nil
}

func (f *fakeRepo) SaveRegion(_ context.Context, region *models.Region) error {
	copied := *region
	f.regions[region.ID] = &copied
	return nil
}

func (f *fakeRepo) ListRegions(_ context.Context, worldID string) ([]models.Region, error) {
	var out []models.Region
	for _, region := range f.regions {
		if region.WorldID == worldID {
			out = append(out, *region)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateCampaign(_ context.Context, campaign *models.ExpansionCampaign) error {
	copied := *campaign
	f.campaigns[campaign.ID] = &copied
	return nil
}

func (f *fakeRepo) FindCampaign(_ context.Context, campaignID uuid.UUID) (*models.ExpansionCampaign, error) {
	campaign, ok := f.campaigns[campaignID]
	if !ok {
		return nil, nil
	}
	copied := *campaign
	return &copied, nil
}

func (f *fakeRepo) FindActiveCampaign(_ context.Context, regionID string) (*models.ExpansionCampaign, error) {
	for _, campaign := range f.campaigns {
		if campaign.RegionID == regionID && campaign.Status == enums.CampaignStatusActive {
			copied := *campaign
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) ListExpiredActiveCampaigns(_ context.Context, now time.Time) ([]models.ExpansionCampaign, error) {
	var expired []models.ExpansionCampaign
	for _, campaign := range f.campaigns {
		if campaign.Status == enums.CampaignStatusActive && campaign.EndsAt.Before(now) {
			expired = append(expired, *campaign)
		}
	}
	return expired, nil
}

func (f *fakeRepo) SaveCampaign(_ context.Context, campaign *models.ExpansionCampaign) error {
	copied := *campaign
	f.campaigns[campaign.ID] = &copied
	return nil
}

func (f *fakeRepo) CreateAllocation(_ context.Context, allocation *models.CampaignAllocation) error {
	key := fmt.Sprintf("%s-%d", allocation.CampaignID, allocation.GridIndex)
	if _, exists := f.allocations[key]; exists {
		return fmt.Errorf("duplicate key value violates unique constraint %q", "ux_campaign_allocations_parcel")
	}
	f.allocations[key] = *allocation
	return nil
}

func (f *fakeRepo) CountWalletAllocations(_ context.Context, campaignID uuid.UUID, wallet string) (int64, error) {
	var count int64
	for _, allocation := range f.allocations {
		if allocation.CampaignID == campaignID && allocation.Wallet == wallet {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) CreateParcelState(_ context.Context, state *models.ParcelState) error {
	key := fmt.Sprintf("%s-%d", state.RegionID, state.GridIndex)
	if _, exists := f.states[key]; exists {
		return fmt.Errorf("duplicate key value violates unique constraint %q", "ux_parcel_states_region_index")
	}
	f.states[key] = *state
	return nil
}

type fakeTx struct{}

func (fakeTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type fakeOutbox struct {
	events []outbox.DomainEvent
}

func (f *fakeOutbox) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

func newTestService(t *testing.T) (Service, *fakeRepo, *fakeOutbox) {
	t.Helper()
	repo := newFakeRepo()
	ob := &fakeOutbox{}
	logg := logger.New(logger.Options{ServiceName: "regions-test", Output: io.Discard})
	svc, err := NewService(repo, fakeTx{}, ob, logg, config.WorldConfig{ParcelSize: 16, SlotPitch: 4096})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	return svc, repo, ob
}

func mustCreateWorld(t *testing.T, svc Service) *models.World {
	t.Helper()
	world, err := svc.CreateWorld(context.Background(), CreateWorldInput{
		WorldID:             "arcadia",
		Name:                "Arcadia",
		Owner:               "0xecosystem",
		OwnerType:           enums.WorldOwnerEcosystem,
		RoyaltyEcosystemPct: "50",
		RoyaltyOwnerPct:     "30",
		RoyaltyCreatorPct:   "20",
	})
	if err != nil {
		t.Fatalf("create world: %v", err)
	}
	return world
}

func TestCreateWorldRejectsBadRoyaltySplit(t *testing.T) {
	svc, _, _ := newTestService(t)
	cases := []struct {
		name                      string
		ecosystem, owner, creator string
	}{
		{"sum below 100", "50", "30", "10"},
		{"sum above 100", "50", "30", "30"},
		{"negative share", "120", "-40", "20"},
		{"not a number", "fifty", "30", "20"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateWorld(context.Background(), CreateWorldInput{
				WorldID:             "arcadia",
				Name:                "Arcadia",
				Owner:               "0xecosystem",
				OwnerType:           enums.WorldOwnerEcosystem,
				RoyaltyEcosystemPct: tc.ecosystem,
				RoyaltyOwnerPct:     tc.owner,
				RoyaltyCreatorPct:   tc.creator,
			})
			if !pkgerrors.HasCode(err, pkgerrors.CodeInvalidRoyalty) {
				t.Fatalf("expected invalid royalty split, got %v", err)
			}
		})
	}
}

func TestCreateWorldAcceptsFractionalSplit(t *testing.T) {
	svc, _, ob := newTestService(t)
	world, err := svc.CreateWorld(context.Background(), CreateWorldInput{
		WorldID:             "arcadia",
		Name:                "Arcadia",
		Owner:               "0xecosystem",
		OwnerType:           enums.WorldOwnerEcosystem,
		RoyaltyEcosystemPct: "33.34",
		RoyaltyOwnerPct:     "33.33",
		RoyaltyCreatorPct:   "33.33",
	})
	if err != nil {
		t.Fatalf("create world: %v", err)
	}
	if world.NextRegionSlot != 0 {
		t.Fatalf("new world starts at slot 0, got %d", world.NextRegionSlot)
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventWorldCreated {
		t.Fatalf("expected world created event, got %+v", ob.events)
	}
}

func TestSpiralPlacementDistinctOffsets(t *testing.T) {
	svc, _, _ := newTestService(t)
	mustCreateWorld(t, svc)
	ctx := context.Background()

	type offset struct{ x, z int64 }
	seen := make(map[offset]string)
	for i := 0; i < 3; i++ {
		region, err := svc.CreateRegion(ctx, CreateRegionInput{
			WorldID:  "arcadia",
			RegionID: fmt.Sprintf("region-%d", i),
			Name:     fmt.Sprintf("Region %d", i),
			Width:    40,
			Height:   40,
		})
		if err != nil {
			t.Fatalf("create region %d: %v", i, err)
		}
		key := offset{region.OffsetX, region.OffsetZ}
		if prev, dup := seen[key]; dup {
			t.Fatalf("offset collision between %s and %s at %+v", prev, region.ID, key)
		}
		seen[key] = region.ID
	}

	first, err := svc.GetRegion(ctx, "region-0")
	if err != nil {
		t.Fatalf("get region: %v", err)
	}
	if first.OffsetX != 0 || first.OffsetZ != 0 {
		t.Fatalf("first region sits at the origin, got %d/%d", first.OffsetX, first.OffsetZ)
	}
}

func TestCreateRegionRejectsExtentWiderThanSlot(t *testing.T) {
	svc, _, _ := newTestService(t)
	mustCreateWorld(t, svc)
	ctx := context.Background()

	// Pitch 4096 with 16-unit parcels caps an edge at 256 parcels. A
	// 300-wide region would span 4800 world units and run into the
	// neighbouring slot.
	_, err := svc.CreateRegion(ctx, CreateRegionInput{
		WorldID:  "arcadia",
		RegionID: "sprawl",
		Name:     "Sprawl",
		Width:    300,
		Height:   10,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for oversized width, got %v", err)
	}
	_, err = svc.CreateRegion(ctx, CreateRegionInput{
		WorldID:  "arcadia",
		RegionID: "tower",
		Name:     "Tower",
		Width:    10,
		Height:   300,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for oversized height, got %v", err)
	}

	region, err := svc.CreateRegion(ctx, CreateRegionInput{
		WorldID:  "arcadia",
		RegionID: "maximal",
		Name:     "Maximal",
		Width:    256,
		Height:   256,
	})
	if err != nil {
		t.Fatalf("region filling the slot exactly should be accepted: %v", err)
	}
	if region.Width != 256 || region.Height != 256 {
		t.Fatalf("unexpected region extent %dx%d", region.Width, region.Height)
	}
}

func TestSlotOffsetSpiralIsInjective(t *testing.T) {
	type cell struct{ x, z int64 }
	seen := make(map[cell]int)
	for slot := 0; slot < 50; slot++ {
		off := slotOffset(slot, 4096)
		if off.X%4096 != 0 || off.Z%4096 != 0 {
			t.Fatalf("slot %d offset not on pitch grid: %+v", slot, off)
		}
		key := cell{off.X, off.Z}
		if prev, dup := seen[key]; dup {
			t.Fatalf("slots %d and %d collide at %+v", prev, slot, key)
		}
		seen[key] = slot
	}
}

func TestAllocationPriceCurves(t *testing.T) {
	cases := []struct {
		model     enums.CampaignPricingModel
		allocated int
		want      int64
	}{
		{enums.CampaignPricingFlat, 0, 100},
		{enums.CampaignPricingFlat, 7, 100},
		{enums.CampaignPricingLinear, 0, 100},
		{enums.CampaignPricingLinear, 3, 130},
		{enums.CampaignPricingBonding, 0, 100},
		{enums.CampaignPricingBonding, 3, 190},
	}
	for _, tc := range cases {
		campaign := &models.ExpansionCampaign{
			PricingModel: tc.model,
			BasePrice:    100,
			PriceStep:    10,
			Allocated:    tc.allocated,
		}
		got, err := allocationPrice(campaign)
		if err != nil {
			t.Fatalf("%s/%d: %v", tc.model, tc.allocated, err)
		}
		if got != tc.want {
			t.Fatalf("%s at n=%d: expected %d, got %d", tc.model, tc.allocated, tc.want, got)
		}
	}
}

func campaignFixture(t *testing.T, svc Service) *models.ExpansionCampaign {
	t.Helper()
	mustCreateWorld(t, svc)
	ctx := context.Background()
	if _, err := svc.CreateRegion(ctx, CreateRegionInput{
		WorldID:  "arcadia",
		RegionID: "frontier",
		Name:     "Frontier",
		Width:    10,
		Height:   10,
	}); err != nil {
		t.Fatalf("create region: %v", err)
	}
	campaign, err := svc.OpenCampaign(ctx, OpenCampaignInput{
		RegionID:     "frontier",
		PricingModel: enums.CampaignPricingLinear,
		MaxPerWallet: 2,
		BasePrice:    100,
		PriceStep:    10,
		StartsAt:     time.Now().Add(-time.Hour),
		EndsAt:       time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("open campaign: %v", err)
	}
	return campaign
}

func TestOpenCampaignMarksRegionMinting(t *testing.T) {
	svc, repo, _ := newTestService(t)
	campaignFixture(t, svc)

	region := repo.regions["frontier"]
	if region.Status != enums.RegionStatusMinting {
		t.Fatalf("expected minting region, got %s", region.Status)
	}

	_, err := svc.OpenCampaign(context.Background(), OpenCampaignInput{
		RegionID:     "frontier",
		PricingModel: enums.CampaignPricingFlat,
		MaxPerWallet: 1,
		BasePrice:    50,
		StartsAt:     time.Now(),
		EndsAt:       time.Now().Add(time.Hour),
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("second campaign on the same region must fail, got %v", err)
	}
}

func TestAllocateWalksTheCurve(t *testing.T) {
	svc, repo, _ := newTestService(t)
	campaign := campaignFixture(t, svc)
	ctx := context.Background()

	first, err := svc.Allocate(ctx, AllocateInput{CampaignID: campaign.ID, Wallet: "0xalice", GridIndex: 0})
	if err != nil {
		t.Fatalf("first allocation: %v", err)
	}
	if first.Price != 100 || first.Sequence != 1 {
		t.Fatalf("unexpected first allocation %+v", first)
	}

	second, err := svc.Allocate(ctx, AllocateInput{CampaignID: campaign.ID, Wallet: "0xbob", GridIndex: 1})
	if err != nil {
		t.Fatalf("second allocation: %v", err)
	}
	if second.Price != 110 || second.Sequence != 2 {
		t.Fatalf("linear curve broken: %+v", second)
	}

	state, ok := repo.states["frontier-1"]
	if !ok || state.Owner == nil || *state.Owner != "0xbob" {
		t.Fatalf("allocation must create owned parcel state, got %+v", state)
	}
}

func TestAllocateEnforcesWalletLimit(t *testing.T) {
	svc, _, _ := newTestService(t)
	campaign := campaignFixture(t, svc)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.Allocate(ctx, AllocateInput{CampaignID: campaign.ID, Wallet: "0xalice", GridIndex: i}); err != nil {
			t.Fatalf("allocation %d: %v", i, err)
		}
	}
	_, err := svc.Allocate(ctx, AllocateInput{CampaignID: campaign.ID, Wallet: "0xalice", GridIndex: 2})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected wallet limit, got %v", err)
	}
}

func TestAllocateRejectsDuplicateParcel(t *testing.T) {
	svc, _, _ := newTestService(t)
	campaign := campaignFixture(t, svc)
	ctx := context.Background()

	if _, err := svc.Allocate(ctx, AllocateInput{CampaignID: campaign.ID, Wallet: "0xalice", GridIndex: 5}); err != nil {
		t.Fatalf("allocation: %v", err)
	}
	_, err := svc.Allocate(ctx, AllocateInput{CampaignID: campaign.ID, Wallet: "0xbob", GridIndex: 5})
	if !pkgerrors.HasCode(err, pkgerrors.CodeAlreadyOwned) {
		t.Fatalf("expected already-owned, got %v", err)
	}
}

func TestAllocateRejectsIndexOutsideGrid(t *testing.T) {
	svc, _, _ := newTestService(t)
	campaign := campaignFixture(t, svc)

	_, err := svc.Allocate(context.Background(), AllocateInput{CampaignID: campaign.ID, Wallet: "0xalice", GridIndex: 100})
	if !pkgerrors.HasCode(err, pkgerrors.CodeOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
}

func TestCloseCampaignReopensRegion(t *testing.T) {
	svc, repo, ob := newTestService(t)
	campaign := campaignFixture(t, svc)
	ctx := context.Background()

	closed, err := svc.CloseCampaign(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != enums.CampaignStatusClosed {
		t.Fatalf("expected closed, got %s", closed.Status)
	}
	if repo.regions["frontier"].Status != enums.RegionStatusActive {
		t.Fatalf("region must reopen, got %s", repo.regions["frontier"].Status)
	}

	_, err = svc.Allocate(ctx, AllocateInput{CampaignID: campaign.ID, Wallet: "0xalice", GridIndex: 0})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("allocation after close must fail, got %v", err)
	}

	var sawClose bool
	for _, event := range ob.events {
		if event.EventType == enums.EventCampaignClosed {
			sawClose = true
		}
	}
	if !sawClose {
		t.Fatal("expected campaign closed event")
	}

	// Closing twice is a no-op.
	if _, err := svc.CloseCampaign(ctx, campaign.ID); err != nil {
		t.Fatalf("repeat close: %v", err)
	}
}

func TestOpenCampaignRejectsInvertedWindow(t *testing.T) {
	svc, _, _ := newTestService(t)
	mustCreateWorld(t, svc)
	ctx := context.Background()
	if _, err := svc.CreateRegion(ctx, CreateRegionInput{WorldID: "arcadia", RegionID: "frontier", Name: "Frontier", Width: 10, Height: 10}); err != nil {
		t.Fatalf("create region: %v", err)
	}

	_, err := svc.OpenCampaign(ctx, OpenCampaignInput{
		RegionID:     "frontier",
		PricingModel: enums.CampaignPricingFlat,
		MaxPerWallet: 1,
		BasePrice:    50,
		StartsAt:     time.Now().Add(time.Hour),
		EndsAt:       time.Now(),
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
