package registry

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arcadialabs/landgrid-backend/internal/grid"
	"github.com/arcadialabs/landgrid-backend/internal/ledger"
	"github.com/arcadialabs/landgrid-backend/pkg/config"
	"github.com/arcadialabs/landgrid-backend/pkg/db/models"
	"github.com/arcadialabs/landgrid-backend/pkg/enums"
	pkgerrors "github.com/arcadialabs/landgrid-backend/pkg/errors"
	"github.com/arcadialabs/landgrid-backend/pkg/logger"
	"github.com/arcadialabs/landgrid-backend/pkg/metrics"
	"github.com/arcadialabs/landgrid-backend/pkg/pagination"
)

// stateCache is the slice of the redis client the registry reads through.
type stateCache interface {
	GetParcelState(ctx context.Context, parcelID string) (string, error)
	StoreParcelState(ctx context.Context, parcelID string, payload string, ttl time.Duration) error
}

// recordFetcher falls back to the authoritative ledger when neither cache
// nor database has seen a parcel yet.
type recordFetcher interface {
	GetParcelRecord(ctx context.Context, regionID string, index int) (*ledger.ParcelRecord, error)
}

type ListInput struct {
	RegionID string
	Page     int
	PageSize int
}

type ListResult struct {
	Parcels    []Parcel `json:"parcels"`
	Page       int      `json:"page"`
	PageSize   int      `json:"pageSize"`
	TotalPages int      `json:"totalPages"`
	TotalItems int      `json:"totalItems"`
}

type FilterInput struct {
	RegionID string
	Filters  Filters
}

type StatisticsInput struct {
	RegionID string
	Filters  Filters
}

// Service is the query surface: the only contract presentation layers may
// depend on.
type Service interface {
	Get(ctx context.Context, parcelID string) (*Parcel, error)
	List(ctx context.Context, input ListInput) (*ListResult, error)
	Filter(ctx context.Context, input FilterInput) ([]Parcel, error)
	Statistics(ctx context.Context, input StatisticsInput) (*Statistics, error)
}

type service struct {
	repo    Repository
	cache   stateCache
	client  recordFetcher
	metrics *metrics.QueryMetrics
	logg    *logger.Logger
	cfg     config.RegistryConfig
	world   config.WorldConfig
}

func NewService(repo Repository, cache stateCache, client recordFetcher, m *metrics.QueryMetrics, logg *logger.Logger, cfg config.RegistryConfig, world config.WorldConfig) (Service, error) {
	if repo == nil {
		return nil, stderrors.New("registry repository required")
	}
	if logg == nil {
		return nil, stderrors.New("logger required")
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = pagination.DefaultPageSize
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = pagination.MaxPageSize
	}
	if world.ParcelSize <= 0 {
		world.ParcelSize = 16
	}
	return &service{
		repo:    repo,
		cache:   cache,
		client:  client,
		metrics: m,
		logg:    logg,
		cfg:     cfg,
		world:   world,
	}, nil
}

func (s *service) loadRegion(ctx context.Context, regionID string) (*models.Region, error) {
	region, err := s.repo.FindRegion(ctx, regionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load region")
	}
	if region == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "region not found")
	}
	return region, nil
}

// Get returns one assembled parcel, reading state through the cache and
// falling back to the ledger when the database has never seen the parcel.
func (s *service) Get(ctx context.Context, parcelID string) (*Parcel, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDuration("get", time.Since(start)) }()

	regionID, index, err := grid.ParseParcelID(parcelID)
	if err != nil {
		return nil, err
	}
	region, err := s.loadRegion(ctx, regionID)
	if err != nil {
		return nil, err
	}
	if index >= region.ParcelCount() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "parcel not found")
	}

	state, err := s.loadState(ctx, region, parcelID, index)
	if err != nil {
		return nil, err
	}
	parcel, err := assembleParcel(region, index, state, s.world.ParcelSize)
	if err != nil {
		return nil, err
	}
	return &parcel, nil
}

// loadState resolves the mutable half of a parcel: cache, then database,
// then the authoritative ledger. A nil result means unclaimed.
func (s *service) loadState(ctx context.Context, region *models.Region, parcelID string, index int) (*models.ParcelState, error) {
	if s.cache != nil {
		payload, err := s.cache.GetParcelState(ctx, parcelID)
		switch {
		case err == nil:
			s.metrics.IncCacheHit("get")
			var state *models.ParcelState
			if unmarshalErr := json.Unmarshal([]byte(payload), &state); unmarshalErr == nil {
				return state, nil
			}
			// Unreadable entry: fall through and repopulate.
		case stderrors.Is(err, redis.Nil):
			s.metrics.IncCacheMiss("get")
		default:
			s.logg.Warn(s.logg.WithParcelID(ctx, parcelID), "parcel cache read failed")
		}
	}

	state, err := s.repo.FindState(ctx, region.ID, index)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load parcel state")
	}
	if state == nil && s.client != nil {
		record, ledgerErr := s.client.GetParcelRecord(ctx, region.ID, index)
		if ledgerErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, ledgerErr, "ledger record lookup")
		}
		if record != nil {
			state = stateFromRecord(record)
		}
	}

	s.storeState(ctx, parcelID, state)
	return state, nil
}

func (s *service) storeState(ctx context.Context, parcelID string, state *models.ParcelState) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return
	}
	if err := s.cache.StoreParcelState(ctx, parcelID, string(payload), s.cfg.CacheTTL); err != nil {
		s.logg.Warn(s.logg.WithParcelID(ctx, parcelID), "parcel cache write failed")
	}
}

// stateFromRecord maps a ledger record onto the local state shape without
// persisting it. Reconciliation into the database is the ledger adapter's
// job.
func stateFromRecord(record *ledger.ParcelRecord) *models.ParcelState {
	state := &models.ParcelState{
		RegionID:        record.RegionID,
		GridIndex:       record.Index,
		Owner:           record.Owner,
		SalePrice:       record.SalePrice,
		HasHouse:        record.HasHouse,
		BusinessLicense: record.License,
		BusinessRevenue: record.Revenue,
	}
	if state.BusinessLicense == "" {
		state.BusinessLicense = enums.BusinessLicenseNone
	}
	if record.Owner == nil || record.SalePrice != nil {
		state.Status = enums.ParcelStatusForSale
	} else {
		state.Status = enums.ParcelStatusOwned
	}
	return state
}

// regionParcels assembles every parcel in a region, overlaying stored state
// rows on the virtual unclaimed grid.
func (s *service) regionParcels(ctx context.Context, regionID string) ([]Parcel, error) {
	region, err := s.loadRegion(ctx, regionID)
	if err != nil {
		return nil, err
	}
	states, err := s.repo.ListStates(ctx, regionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list parcel states")
	}
	byIndex := make(map[int]*models.ParcelState, len(states))
	for i := range states {
		byIndex[states[i].GridIndex] = &states[i]
	}

	parcels := make([]Parcel, 0, region.ParcelCount())
	for index := 0; index < region.ParcelCount(); index++ {
		parcel, err := assembleParcel(region, index, byIndex[index], s.world.ParcelSize)
		if err != nil {
			return nil, err
		}
		parcels = append(parcels, parcel)
	}
	return parcels, nil
}

// List pages through a region in grid order. The total is known from the
// region extent alone, so only the requested window is assembled and only
// its state rows are fetched.
func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDuration("list", time.Since(start)) }()

	region, err := s.loadRegion(ctx, input.RegionID)
	if err != nil {
		return nil, err
	}

	size := input.PageSize
	if size <= 0 {
		size = s.cfg.DefaultPageSize
	}
	if size > s.cfg.MaxPageSize {
		size = s.cfg.MaxPageSize
	}
	page := pagination.Resolve(pagination.Params{Page: input.Page, PageSize: size}, region.ParcelCount())
	lo, hi := page.Window()

	states, err := s.repo.ListStatesRange(ctx, input.RegionID, lo, hi)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list parcel states")
	}
	byIndex := make(map[int]*models.ParcelState, len(states))
	for i := range states {
		byIndex[states[i].GridIndex] = &states[i]
	}

	parcels := make([]Parcel, 0, hi-lo)
	for index := lo; index < hi; index++ {
		parcel, err := assembleParcel(region, index, byIndex[index], s.world.ParcelSize)
		if err != nil {
			return nil, err
		}
		parcels = append(parcels, parcel)
	}

	return &ListResult{
		Parcels:    parcels,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: page.TotalPages,
		TotalItems: page.TotalItems,
	}, nil
}

func (s *service) Filter(ctx context.Context, input FilterInput) ([]Parcel, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDuration("filter", time.Since(start)) }()

	parcels, err := s.regionParcels(ctx, input.RegionID)
	if err != nil {
		return nil, err
	}
	return input.Filters.Apply(parcels), nil
}

func (s *service) Statistics(ctx context.Context, input StatisticsInput) (*Statistics, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDuration("statistics", time.Since(start)) }()

	parcels, err := s.Filter(ctx, FilterInput(input))
	if err != nil {
		return nil, err
	}
	stats := StatisticsOf(parcels, s.cfg.DAOWallet)
	return &stats, nil
}
