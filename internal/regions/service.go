package regions

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/arcadialabs/landgrid-backend/internal/grid"
	"github.com/arcadialabs/landgrid-backend/pkg/config"
	dbpkg "github.com/arcadialabs/landgrid-backend/pkg/db"
	"github.com/arcadialabs/landgrid-backend/pkg/db/models"
	"github.com/arcadialabs/landgrid-backend/pkg/enums"
	pkgerrors "github.com/arcadialabs/landgrid-backend/pkg/errors"
	"github.com/arcadialabs/landgrid-backend/pkg/logger"
	"github.com/arcadialabs/landgrid-backend/pkg/outbox"
	"github.com/arcadialabs/landgrid-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type CreateWorldInput struct {
	WorldID             string
	Name                string
	Owner               string
	OwnerType           enums.WorldOwnerType
	RoyaltyEcosystemPct string
	RoyaltyOwnerPct     string
	RoyaltyCreatorPct   string
}

type CreateRegionInput struct {
	WorldID        string
	RegionID       string
	Name           string
	Width          int
	Height         int
	FounderPlots   int
	Creator        *string
	ZoneBasePrices json.RawMessage
}

type OpenCampaignInput struct {
	RegionID     string
	PricingModel enums.CampaignPricingModel
	MaxPerWallet int
	BasePrice    int64
	PriceStep    int64
	StartsAt     time.Time
	EndsAt       time.Time
}

type AllocateInput struct {
	CampaignID uuid.UUID
	Wallet     string
	GridIndex  int
}

// AllocationResult reports one granted parcel and its curve price.
type AllocationResult struct {
	ParcelID string
	Price    int64
	Sequence int
}

type Service interface {
	CreateWorld(ctx context.Context, input CreateWorldInput) (*models.World, error)
	GetWorld(ctx context.Context, worldID string) (*models.World, error)
	CreateRegion(ctx context.Context, input CreateRegionInput) (*models.Region, error)
	GetRegion(ctx context.Context, regionID string) (*models.Region, error)
	ListRegions(ctx context.Context, worldID string) ([]models.Region, error)
	OpenCampaign(ctx context.Context, input OpenCampaignInput) (*models.ExpansionCampaign, error)
	Allocate(ctx context.Context, input AllocateInput) (*AllocationResult, error)
	CloseCampaign(ctx context.Context, campaignID uuid.UUID) (*models.ExpansionCampaign, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	logg   *logger.Logger
	world  config.WorldConfig

	// allocMu serializes campaign allocations so the per-campaign counter
	// and the curve price stay consistent. The unique index on
	// (campaign_id, grid_index) backstops it.
	allocMu sync.Mutex
}

func NewService(repo Repository, tx txRunner, ob outboxPublisher, logg *logger.Logger, world config.WorldConfig) (Service, error) {
	if repo == nil {
		return nil, stderrors.New("regions repository required")
	}
	if tx == nil {
		return nil, stderrors.New("transaction runner required")
	}
	if ob == nil {
		return nil, stderrors.New("outbox publisher required")
	}
	if logg == nil {
		return nil, stderrors.New("logger required")
	}
	if world.SlotPitch <= 0 {
		world.SlotPitch = 4096
	}
	if world.ParcelSize <= 0 {
		world.ParcelSize = 16
	}
	return &service{repo: repo, tx: tx, outbox: ob, logg: logg, world: world}, nil
}

func (s *service) CreateWorld(ctx context.Context, input CreateWorldInput) (*models.World, error) {
	if input.WorldID == "" || input.Name == "" || input.Owner == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "world id, name, and owner are required")
	}
	if !input.OwnerType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown world owner type")
	}
	ecosystem, owner, creator, err := parseRoyaltySplit(input.RoyaltyEcosystemPct, input.RoyaltyOwnerPct, input.RoyaltyCreatorPct)
	if err != nil {
		return nil, err
	}

	world := &models.World{
		ID:                  input.WorldID,
		Name:                input.Name,
		Owner:               input.Owner,
		OwnerType:           input.OwnerType,
		RoyaltyEcosystemPct: ecosystem,
		RoyaltyOwnerPct:     owner,
		RoyaltyCreatorPct:   creator,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if createErr := repo.CreateWorld(ctx, world); createErr != nil {
			if dbpkg.IsUniqueViolation(createErr, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "world already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "create world")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventWorldCreated,
			AggregateType: enums.AggregateWorld,
			AggregateID:   world.ID,
			Version:       1,
			Data: payloads.WorldCreatedEvent{
				WorldID:      world.ID,
				Owner:        world.Owner,
				OwnerType:    world.OwnerType,
				EcosystemPct: ecosystem.String(),
				OwnerPct:     owner.String(),
				CreatorPct:   creator.String(),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithWorldID(ctx, world.ID), "world created")
	return world, nil
}

// parseRoyaltySplit validates that the three percentages are non-negative
// and sum to exactly 100. Partial application is never allowed: any failure
// rejects the whole split.
func parseRoyaltySplit(ecosystemPct, ownerPct, creatorPct string) (decimal.Decimal, decimal.Decimal, decimal.Decimal, error) {
	parse := func(raw, name string) (decimal.Decimal, error) {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeInvalidRoyalty, name+" percentage is not a number")
		}
		if value.IsNegative() {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeInvalidRoyalty, name+" percentage is negative")
		}
		return value, nil
	}
	ecosystem, err := parse(ecosystemPct, "ecosystem")
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, err
	}
	owner, err := parse(ownerPct, "owner")
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, err
	}
	creator, err := parse(creatorPct, "creator")
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, err
	}
	if !ecosystem.Add(owner).Add(creator).Equal(decimal.NewFromInt(100)) {
		return decimal.Zero, decimal.Zero, decimal.Zero, pkgerrors.New(pkgerrors.CodeInvalidRoyalty, "royalty percentages must sum to 100")
	}
	return ecosystem, owner, creator, nil
}

func (s *service) GetWorld(ctx context.Context, worldID string) (*models.World, error) {
	world, err := s.repo.FindWorld(ctx, worldID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load world")
	}
	if world == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "world not found")
	}
	return world, nil
}

func (s *service) CreateRegion(ctx context.Context, input CreateRegionInput) (*models.Region, error) {
	if input.RegionID == "" || input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "region id and name are required")
	}
	if input.Width < 4 || input.Height < 4 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "region must be at least 4x4")
	}
	// A region must fit inside one spiral slot or it overlaps the next one.
	maxEdge := int(s.world.SlotPitch / s.world.ParcelSize)
	if input.Width > maxEdge || input.Height > maxEdge {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "region exceeds the maximum edge of "+strconv.Itoa(maxEdge)+" parcels")
	}
	if input.FounderPlots < 0 || input.FounderPlots > input.Width*input.Height {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "founder plot count out of range")
	}

	var region *models.Region
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		world, findErr := repo.FindWorld(ctx, input.WorldID)
		if findErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load world")
		}
		if world == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "world not found")
		}

		offset := slotOffset(world.NextRegionSlot, s.world.SlotPitch)
		world.NextRegionSlot++
		if saveErr := repo.SaveWorld(ctx, world); saveErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, saveErr, "advance region slot")
		}

		region = &models.Region{
			ID:             input.RegionID,
			WorldID:        world.ID,
			Name:           input.Name,
			Width:          input.Width,
			Height:         input.Height,
			FounderPlots:   input.FounderPlots,
			OffsetX:        offset.X,
			OffsetZ:        offset.Z,
			Status:         enums.RegionStatusActive,
			Creator:        input.Creator,
			ZoneBasePrices: input.ZoneBasePrices,
		}
		if createErr := repo.CreateRegion(ctx, region); createErr != nil {
			if dbpkg.IsUniqueViolation(createErr, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "region already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "create region")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRegionCreated,
			AggregateType: enums.AggregateRegion,
			AggregateID:   region.ID,
			Version:       1,
			Data: payloads.RegionCreatedEvent{
				RegionID:     region.ID,
				WorldID:      region.WorldID,
				Width:        region.Width,
				Height:       region.Height,
				OffsetX:      region.OffsetX,
				OffsetZ:      region.OffsetZ,
				FounderPlots: region.FounderPlots,
				Creator:      region.Creator,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithRegionID(ctx, region.ID), "region created")
	return region, nil
}

func (s *service) GetRegion(ctx context.Context, regionID string) (*models.Region, error) {
	region, err := s.repo.FindRegion(ctx, regionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load region")
	}
	if region == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "region not found")
	}
	return region, nil
}

func (s *service) ListRegions(ctx context.Context, worldID string) ([]models.Region, error) {
	if _, err := s.GetWorld(ctx, worldID); err != nil {
		return nil, err
	}
	regions, err := s.repo.ListRegions(ctx, worldID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list regions")
	}
	return regions, nil
}

func (s *service) OpenCampaign(ctx context.Context, input OpenCampaignInput) (*models.ExpansionCampaign, error) {
	if !input.PricingModel.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown campaign pricing model")
	}
	if input.BasePrice <= 0 || input.PriceStep < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "campaign prices must be positive")
	}
	if input.MaxPerWallet <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max per wallet must be positive")
	}
	if !input.EndsAt.After(input.StartsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "campaign window must end after it starts")
	}

	var campaign *models.ExpansionCampaign
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		region, findErr := repo.FindRegion(ctx, input.RegionID)
		if findErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load region")
		}
		if region == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "region not found")
		}
		if region.Status != enums.RegionStatusActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "region is not open for a campaign")
		}
		existing, findErr := repo.FindActiveCampaign(ctx, region.ID)
		if findErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "look up active campaign")
		}
		if existing != nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "region already has an active campaign")
		}

		campaign = &models.ExpansionCampaign{
			ID:           uuid.New(),
			RegionID:     region.ID,
			PricingModel: input.PricingModel,
			Status:       enums.CampaignStatusActive,
			MaxPerWallet: input.MaxPerWallet,
			BasePrice:    input.BasePrice,
			PriceStep:    input.PriceStep,
			StartsAt:     input.StartsAt.UTC(),
			EndsAt:       input.EndsAt.UTC(),
		}
		if createErr := repo.CreateCampaign(ctx, campaign); createErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "create campaign")
		}
		region.Status = enums.RegionStatusMinting
		if saveErr := repo.SaveRegion(ctx, region); saveErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, saveErr, "mark region minting")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCampaignOpened,
			AggregateType: enums.AggregateCampaign,
			AggregateID:   campaign.ID.String(),
			Version:       1,
			Data: payloads.CampaignOpenedEvent{
				CampaignID:   campaign.ID.String(),
				RegionID:     campaign.RegionID,
				PricingModel: campaign.PricingModel,
				BasePrice:    campaign.BasePrice,
				StartsAt:     campaign.StartsAt,
				EndsAt:       campaign.EndsAt,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithRegionID(ctx, campaign.RegionID), "expansion campaign opened")
	return campaign, nil
}

func (s *service) Allocate(ctx context.Context, input AllocateInput) (*AllocationResult, error) {
	if input.Wallet == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "wallet missing")
	}

	s.allocMu.Lock()
	defer s.allocMu.Unlock()

	campaign, err := s.repo.FindCampaign(ctx, input.CampaignID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load campaign")
	}
	if campaign == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "campaign not found")
	}
	if campaign.Status != enums.CampaignStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "campaign is closed")
	}
	now := time.Now().UTC()
	if now.Before(campaign.StartsAt) || now.After(campaign.EndsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "campaign window is not open")
	}

	region, err := s.repo.FindRegion(ctx, campaign.RegionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load region")
	}
	if region == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "region not found")
	}
	size := grid.Size{Width: region.Width, Height: region.Height}
	if _, err := grid.CoordsFromIndex(size, input.GridIndex); err != nil {
		return nil, err
	}

	taken, err := s.repo.CountWalletAllocations(ctx, campaign.ID, input.Wallet)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count wallet allocations")
	}
	if taken >= int64(campaign.MaxPerWallet) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "wallet allocation limit reached")
	}

	price, err := allocationPrice(campaign)
	if err != nil {
		return nil, err
	}

	parcelID := grid.FormatParcelID(region.ID, input.GridIndex)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if createErr := repo.CreateAllocation(ctx, &models.CampaignAllocation{
			CampaignID: campaign.ID,
			Wallet:     input.Wallet,
			GridIndex:  input.GridIndex,
			Price:      price,
		}); createErr != nil {
			if dbpkg.IsUniqueViolation(createErr, "ux_campaign_allocations_parcel") {
				return pkgerrors.New(pkgerrors.CodeAlreadyOwned, "parcel already allocated")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "create allocation")
		}

		wallet := input.Wallet
		if createErr := repo.CreateParcelState(ctx, &models.ParcelState{
			RegionID:        region.ID,
			GridIndex:       input.GridIndex,
			Owner:           &wallet,
			Status:          enums.ParcelStatusOwned,
			LastSalePrice:   &price,
			BusinessLicense: enums.BusinessLicenseNone,
			AcquiredAt:      &now,
		}); createErr != nil {
			if dbpkg.IsUniqueViolation(createErr, "ux_parcel_states_region_index") {
				return pkgerrors.New(pkgerrors.CodeAlreadyOwned, "parcel already owned")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "create parcel state")
		}

		campaign.Allocated++
		if saveErr := repo.SaveCampaign(ctx, campaign); saveErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, saveErr, "advance allocation counter")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCampaignAllocated,
			AggregateType: enums.AggregateCampaign,
			AggregateID:   campaign.ID.String(),
			Version:       1,
			Actor:         &outbox.ActorRef{Wallet: input.Wallet},
			Data: payloads.CampaignAllocatedEvent{
				CampaignID: campaign.ID.String(),
				ParcelID:   parcelID,
				Wallet:     input.Wallet,
				Price:      price,
				Sequence:   campaign.Allocated,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	return &AllocationResult{ParcelID: parcelID, Price: price, Sequence: campaign.Allocated}, nil
}

func (s *service) CloseCampaign(ctx context.Context, campaignID uuid.UUID) (*models.ExpansionCampaign, error) {
	campaign, err := s.repo.FindCampaign(ctx, campaignID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load campaign")
	}
	if campaign == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "campaign not found")
	}
	if campaign.Status == enums.CampaignStatusClosed {
		return campaign, nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		campaign.Status = enums.CampaignStatusClosed
		if saveErr := repo.SaveCampaign(ctx, campaign); saveErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, saveErr, "close campaign")
		}
		region, findErr := repo.FindRegion(ctx, campaign.RegionID)
		if findErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load region")
		}
		if region != nil && region.Status == enums.RegionStatusMinting {
			region.Status = enums.RegionStatusActive
			if saveErr := repo.SaveRegion(ctx, region); saveErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, saveErr, "reopen region")
			}
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCampaignClosed,
			AggregateType: enums.AggregateCampaign,
			AggregateID:   campaign.ID.String(),
			Version:       1,
			Data: payloads.CampaignClosedEvent{
				CampaignID: campaign.ID.String(),
				RegionID:   campaign.RegionID,
				Allocated:  campaign.Allocated,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithRegionID(ctx, campaign.RegionID), "expansion campaign closed")
	return campaign, nil
}
