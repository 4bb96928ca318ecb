package ledger

import (
	"context"
	stderrors "errors"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"

	"github.com/arcadialabs/landgrid-backend/internal/attributes"
	"github.com/arcadialabs/landgrid-backend/internal/grid"
	"github.com/arcadialabs/landgrid-backend/internal/pricing"
	"github.com/arcadialabs/landgrid-backend/pkg/config"
	dbpkg "github.com/arcadialabs/landgrid-backend/pkg/db"
	"github.com/arcadialabs/landgrid-backend/pkg/db/models"
	"github.com/arcadialabs/landgrid-backend/pkg/enums"
	pkgerrors "github.com/arcadialabs/landgrid-backend/pkg/errors"
	"github.com/arcadialabs/landgrid-backend/pkg/logger"
	"github.com/arcadialabs/landgrid-backend/pkg/metrics"
	"github.com/arcadialabs/landgrid-backend/pkg/outbox"
	"github.com/arcadialabs/landgrid-backend/pkg/outbox/payloads"
)

const lockStripes = 64

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type cacheInvalidator interface {
	InvalidateParcelState(ctx context.Context, parcelID string) error
}

// Service is the only write path for parcel ownership state. Every mutation
// settles against the authoritative ledger first; the local row and cache
// change only after the ledger confirms.
type Service interface {
	Purchase(ctx context.Context, input PurchaseInput) (*models.ParcelState, error)
	ListForSale(ctx context.Context, input ListForSaleInput) (*models.ParcelState, error)
	Delist(ctx context.Context, input DelistInput) (*models.ParcelState, error)
	BuildHouse(ctx context.Context, input BuildHouseInput) (*models.ParcelState, error)
	PurchaseLicense(ctx context.Context, input PurchaseLicenseInput) (*models.ParcelState, error)
	RemoveLicense(ctx context.Context, input RemoveLicenseInput) (*models.ParcelState, error)
	RecordRevenue(ctx context.Context, input RecordRevenueInput) (*models.ParcelState, error)
	OwnershipHistory(ctx context.Context, parcelID string) ([]models.OwnershipTransfer, error)
	OwnerParcels(ctx context.Context, regionID, owner string) ([]models.ParcelState, error)
	Reconcile(ctx context.Context, parcelID string) (*models.ParcelState, error)
}

type PurchaseInput struct {
	ParcelID     string
	Buyer        string
	OfferedPrice int64
}

type ListForSaleInput struct {
	ParcelID string
	Wallet   string
	Price    int64
}

type DelistInput struct {
	ParcelID string
	Wallet   string
}

type BuildHouseInput struct {
	ParcelID string
	Wallet   string
}

type PurchaseLicenseInput struct {
	ParcelID string
	Wallet   string
	License  enums.BusinessLicense
}

type RemoveLicenseInput struct {
	ParcelID string
	Wallet   string
}

type RecordRevenueInput struct {
	ParcelID string
	Wallet   string
	Amount   int64
}

type service struct {
	repo    Repository
	tx      txRunner
	client  Client
	outbox  outboxPublisher
	cache   cacheInvalidator
	metrics *metrics.LedgerMetrics
	logg    *logger.Logger
	cfg     config.LedgerConfig
	locks   [lockStripes]sync.Mutex
}

// NewService wires the ledger adapter. cache and metrics may be nil.
func NewService(repo Repository, tx txRunner, client Client, ob outboxPublisher, cache cacheInvalidator, m *metrics.LedgerMetrics, logg *logger.Logger, cfg config.LedgerConfig) (Service, error) {
	if repo == nil {
		return nil, stderrors.New("ledger repository required")
	}
	if tx == nil {
		return nil, stderrors.New("transaction runner required")
	}
	if client == nil {
		return nil, stderrors.New("ledger client required")
	}
	if ob == nil {
		return nil, stderrors.New("outbox publisher required")
	}
	if logg == nil {
		return nil, stderrors.New("logger required")
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 5 * time.Second
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 200 * time.Millisecond
	}
	return &service{
		repo:    repo,
		tx:      tx,
		client:  client,
		outbox:  ob,
		cache:   cache,
		metrics: m,
		logg:    logg,
		cfg:     cfg,
	}, nil
}

func (s *service) lockFor(parcelID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(parcelID))
	return &s.locks[h.Sum32()%lockStripes]
}

// callLedger wraps one ledger operation with a per-call deadline and bounded
// constant-backoff retries for timeouts. State-rule rejections from the
// ledger are never retried.
func (s *service) callLedger(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	start := time.Now()
	backoff := retry.WithMaxRetries(uint64(s.cfg.MaxRetries), retry.NewConstant(s.cfg.RetryBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
		defer cancel()
		if callErr := fn(callCtx); callErr != nil {
			if stderrors.Is(callErr, context.DeadlineExceeded) {
				return retry.RetryableError(callErr)
			}
			return callErr
		}
		return nil
	})
	s.metrics.ObserveDuration(op, time.Since(start))
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			s.metrics.IncTimeout(op)
			return pkgerrors.Wrap(pkgerrors.CodeLedgerTimeout, err, "ledger call timed out")
		}
		s.metrics.IncFailure(op)
		return err
	}
	s.metrics.IncSuccess(op)
	return nil
}

// basePrice computes the canonical price for an unclaimed parcel.
func basePrice(region *models.Region, index int) (int64, error) {
	size := grid.Size{Width: region.Width, Height: region.Height}
	attrs, err := attributes.ComputeByIndex(size, index, region.FounderPlots)
	if err != nil {
		return 0, err
	}
	return pricing.Compute(region.ZoneBasePrice(attrs.Zone), attrs)
}

func (s *service) loadRegion(ctx context.Context, regionID string, index int) (*models.Region, error) {
	region, err := s.repo.FindRegion(ctx, regionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load region")
	}
	if region == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "region not found")
	}
	if index < 0 || index >= region.ParcelCount() {
		return nil, pkgerrors.New(pkgerrors.CodeOutOfRange, "parcel index outside region grid")
	}
	return region, nil
}

func (s *service) invalidate(ctx context.Context, parcelID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateParcelState(ctx, parcelID); err != nil {
		s.logg.Warn(s.logg.WithParcelID(ctx, parcelID), "parcel cache invalidation failed")
	}
}

func (s *service) Purchase(ctx context.Context, input PurchaseInput) (*models.ParcelState, error) {
	regionID, index, err := grid.ParseParcelID(input.ParcelID)
	if err != nil {
		return nil, err
	}
	if input.Buyer == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer wallet missing")
	}
	if input.OfferedPrice < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offered price must be non-negative")
	}

	lock := s.lockFor(input.ParcelID)
	lock.Lock()
	defer lock.Unlock()

	region, err := s.loadRegion(ctx, regionID, index)
	if err != nil {
		return nil, err
	}
	if region.Status == enums.RegionStatusMinting {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "region is minting; parcels are sold through its campaign")
	}

	state, err := s.repo.FindState(ctx, regionID, index)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load parcel state")
	}

	effective, fromOwner, err := effectiveSalePrice(region, index, state)
	if err != nil {
		return nil, err
	}
	if input.OfferedPrice != effective {
		return nil, pkgerrors.New(pkgerrors.CodePriceMismatch, "offered price does not match sale price")
	}

	err = s.callLedger(ctx, "purchase", func(ctx context.Context) error {
		return s.client.SubmitPurchase(ctx, regionID, index, input.Buyer, effective)
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var result *models.ParcelState
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if state == nil {
			owner := input.Buyer
			price := effective
			row := &models.ParcelState{
				RegionID:        regionID,
				GridIndex:       index,
				Owner:           &owner,
				Status:          enums.ParcelStatusOwned,
				LastSalePrice:   &price,
				BusinessLicense: enums.BusinessLicenseNone,
				AcquiredAt:      &now,
			}
			if createErr := repo.CreateState(ctx, row); createErr != nil {
				if dbpkg.IsUniqueViolation(createErr, "ux_parcel_states_region_index") {
					return pkgerrors.New(pkgerrors.CodeAlreadyOwned, "parcel claimed concurrently")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "create parcel state")
			}
			result = row
		} else {
			swapped, swapErr := repo.TransferOwnership(ctx, regionID, index, OwnershipUpdate{
				Owner:         input.Buyer,
				LastSalePrice: effective,
				AcquiredAt:    now,
			})
			if swapErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, swapErr, "transfer ownership")
			}
			if !swapped {
				return pkgerrors.New(pkgerrors.CodeAlreadyOwned, "parcel status changed concurrently")
			}
			owner := input.Buyer
			price := effective
			state.Owner = &owner
			state.Status = enums.ParcelStatusOwned
			state.SalePrice = nil
			state.LastSalePrice = &price
			state.AcquiredAt = &now
			result = state
		}

		if appendErr := repo.AppendTransfer(ctx, &models.OwnershipTransfer{
			RegionID:  regionID,
			GridIndex: index,
			FromOwner: fromOwner,
			ToOwner:   input.Buyer,
			Price:     effective,
		}); appendErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, appendErr, "append ownership transfer")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventParcelPurchased,
			AggregateType: enums.AggregateParcel,
			AggregateID:   input.ParcelID,
			Version:       1,
			Actor:         &outbox.ActorRef{Wallet: input.Buyer},
			Data: payloads.ParcelPurchasedEvent{
				ParcelID:   input.ParcelID,
				RegionID:   regionID,
				GridIndex:  index,
				FromOwner:  fromOwner,
				ToOwner:    input.Buyer,
				Price:      effective,
				PurchaseAt: now,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, input.ParcelID)
	return result, nil
}

// effectiveSalePrice resolves what a buyer must pay right now: the listing
// price for a listed parcel, the computed base price for an unclaimed one.
func effectiveSalePrice(region *models.Region, index int, state *models.ParcelState) (int64, *string, error) {
	if state == nil {
		price, err := basePrice(region, index)
		if err != nil {
			return 0, nil, err
		}
		return price, nil, nil
	}
	if state.Status != enums.ParcelStatusForSale {
		if state.Status == enums.ParcelStatusOwned {
			return 0, nil, pkgerrors.New(pkgerrors.CodeAlreadyOwned, "parcel is not for sale")
		}
		return 0, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "parcel is not for sale")
	}
	if state.SalePrice != nil {
		return *state.SalePrice, state.Owner, nil
	}
	price, err := basePrice(region, index)
	if err != nil {
		return 0, nil, err
	}
	return price, state.Owner, nil
}

func (s *service) ListForSale(ctx context.Context, input ListForSaleInput) (*models.ParcelState, error) {
	if input.Price <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale price must be positive")
	}
	state, unlock, err := s.loadOwned(ctx, input.ParcelID, input.Wallet)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if state.Status != enums.ParcelStatusOwned {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only owned parcels can be listed")
	}

	price := input.Price
	state.Status = enums.ParcelStatusForSale
	state.SalePrice = &price

	err = s.persistWithEvent(ctx, state, outbox.DomainEvent{
		EventType:     enums.EventParcelListed,
		AggregateType: enums.AggregateParcel,
		AggregateID:   input.ParcelID,
		Version:       1,
		Actor:         &outbox.ActorRef{Wallet: input.Wallet},
		Data: payloads.ParcelListedEvent{
			ParcelID:  input.ParcelID,
			Owner:     input.Wallet,
			SalePrice: price,
		},
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, input.ParcelID)
	return state, nil
}

func (s *service) Delist(ctx context.Context, input DelistInput) (*models.ParcelState, error) {
	state, unlock, err := s.loadOwned(ctx, input.ParcelID, input.Wallet)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if state.Status != enums.ParcelStatusForSale {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "parcel is not listed")
	}

	state.Status = enums.ParcelStatusOwned
	state.SalePrice = nil

	err = s.persistWithEvent(ctx, state, outbox.DomainEvent{
		EventType:     enums.EventParcelDelisted,
		AggregateType: enums.AggregateParcel,
		AggregateID:   input.ParcelID,
		Version:       1,
		Actor:         &outbox.ActorRef{Wallet: input.Wallet},
		Data: payloads.ParcelDelistedEvent{
			ParcelID: input.ParcelID,
			Owner:    input.Wallet,
		},
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, input.ParcelID)
	return state, nil
}

func (s *service) BuildHouse(ctx context.Context, input BuildHouseInput) (*models.ParcelState, error) {
	state, unlock, err := s.loadOwned(ctx, input.ParcelID, input.Wallet)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if state.Status != enums.ParcelStatusOwned {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "houses can only be built on owned parcels")
	}
	if state.HasHouse {
		// hasHouse is terminal; repeat builds are a no-op.
		return state, nil
	}

	err = s.callLedger(ctx, "build_house", func(ctx context.Context) error {
		return s.client.SubmitBuildHouse(ctx, state.RegionID, state.GridIndex, input.Wallet)
	})
	if err != nil {
		return nil, err
	}

	state.HasHouse = true
	err = s.persistWithEvent(ctx, state, outbox.DomainEvent{
		EventType:     enums.EventParcelHouseBuilt,
		AggregateType: enums.AggregateParcel,
		AggregateID:   input.ParcelID,
		Version:       1,
		Actor:         &outbox.ActorRef{Wallet: input.Wallet},
		Data: payloads.ParcelHouseBuiltEvent{
			ParcelID: input.ParcelID,
			Owner:    input.Wallet,
		},
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, input.ParcelID)
	return state, nil
}

func (s *service) PurchaseLicense(ctx context.Context, input PurchaseLicenseInput) (*models.ParcelState, error) {
	if !input.License.IsValid() || input.License == enums.BusinessLicenseNone {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a concrete license type is required")
	}
	state, unlock, err := s.loadOwned(ctx, input.ParcelID, input.Wallet)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if state.Status != enums.ParcelStatusOwned {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "licenses require an owned parcel")
	}
	if state.BusinessLicense == input.License {
		return state, nil
	}
	if state.BusinessLicense != enums.BusinessLicenseNone {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyLicensed, "a different license is active; remove it first")
	}

	err = s.callLedger(ctx, "purchase_license", func(ctx context.Context) error {
		return s.client.SubmitLicensePurchase(ctx, state.RegionID, state.GridIndex, input.Wallet, input.License)
	})
	if err != nil {
		return nil, err
	}

	previous := state.BusinessLicense
	state.BusinessLicense = input.License
	err = s.persistWithEvent(ctx, state, outbox.DomainEvent{
		EventType:     enums.EventParcelLicensed,
		AggregateType: enums.AggregateParcel,
		AggregateID:   input.ParcelID,
		Version:       1,
		Actor:         &outbox.ActorRef{Wallet: input.Wallet},
		Data: payloads.ParcelLicensedEvent{
			ParcelID: input.ParcelID,
			Owner:    input.Wallet,
			License:  input.License,
			Previous: &previous,
		},
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, input.ParcelID)
	return state, nil
}

func (s *service) RemoveLicense(ctx context.Context, input RemoveLicenseInput) (*models.ParcelState, error) {
	state, unlock, err := s.loadOwned(ctx, input.ParcelID, input.Wallet)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if state.BusinessLicense == enums.BusinessLicenseNone {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "parcel has no active license")
	}

	previous := state.BusinessLicense
	state.BusinessLicense = enums.BusinessLicenseNone
	err = s.persistWithEvent(ctx, state, outbox.DomainEvent{
		EventType:     enums.EventParcelLicenseRemoved,
		AggregateType: enums.AggregateParcel,
		AggregateID:   input.ParcelID,
		Version:       1,
		Actor:         &outbox.ActorRef{Wallet: input.Wallet},
		Data: payloads.ParcelLicenseRemovedEvent{
			ParcelID: input.ParcelID,
			Owner:    input.Wallet,
			Previous: previous,
		},
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, input.ParcelID)
	return state, nil
}

func (s *service) RecordRevenue(ctx context.Context, input RecordRevenueInput) (*models.ParcelState, error) {
	if input.Amount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "revenue amount must be non-negative")
	}
	state, unlock, err := s.loadOwned(ctx, input.ParcelID, input.Wallet)
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = s.callLedger(ctx, "record_revenue", func(ctx context.Context) error {
		return s.client.SubmitRevenueRecord(ctx, state.RegionID, state.GridIndex, input.Amount)
	})
	if err != nil {
		return nil, err
	}

	state.BusinessRevenue += input.Amount
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if saveErr := repo.SaveState(ctx, state); saveErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, saveErr, "save parcel state")
		}
		if appendErr := repo.AppendRevenue(ctx, &models.RevenueEvent{
			RegionID:  state.RegionID,
			GridIndex: state.GridIndex,
			Amount:    input.Amount,
		}); appendErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, appendErr, "append revenue event")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventParcelRevenueRecorded,
			AggregateType: enums.AggregateParcel,
			AggregateID:   input.ParcelID,
			Version:       1,
			Actor:         &outbox.ActorRef{Wallet: input.Wallet},
			Data: payloads.ParcelRevenueRecordedEvent{
				ParcelID:     input.ParcelID,
				Owner:        input.Wallet,
				Amount:       input.Amount,
				TotalRevenue: state.BusinessRevenue,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, input.ParcelID)
	return state, nil
}

func (s *service) OwnershipHistory(ctx context.Context, parcelID string) ([]models.OwnershipTransfer, error) {
	regionID, index, err := grid.ParseParcelID(parcelID)
	if err != nil {
		return nil, err
	}
	transfers, err := s.repo.ListTransfers(ctx, regionID, index)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ownership transfers")
	}
	return transfers, nil
}

// Reconcile pulls the ledger's record for a parcel and overwrites the local
// row with it. On any disagreement the ledger wins.
// OwnerParcels lists a wallet's holdings in a region. The ledger is the
// authority on which indices belong to the wallet; rows the database has
// never seen are reconciled in before they are returned.
func (s *service) OwnerParcels(ctx context.Context, regionID, owner string) ([]models.ParcelState, error) {
	if owner == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner wallet is required")
	}
	region, err := s.repo.FindRegion(ctx, regionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load region")
	}
	if region == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "region not found")
	}

	var indices []int
	err = s.callLedger(ctx, "get_owner_parcels", func(ctx context.Context) error {
		fetched, fetchErr := s.client.GetOwnerParcels(ctx, regionID, owner)
		if fetchErr != nil {
			return fetchErr
		}
		indices = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Ints(indices)

	parcels := make([]models.ParcelState, 0, len(indices))
	for _, index := range indices {
		if index < 0 || index >= region.ParcelCount() {
			s.logg.Warn(s.logg.WithRegionID(ctx, regionID), "ledger reported an index outside the region grid")
			continue
		}
		state, findErr := s.repo.FindState(ctx, regionID, index)
		if findErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load parcel state")
		}
		if state == nil {
			state, findErr = s.Reconcile(ctx, grid.FormatParcelID(regionID, index))
			if findErr != nil {
				return nil, findErr
			}
			if state == nil {
				continue
			}
		}
		parcels = append(parcels, *state)
	}
	return parcels, nil
}

func (s *service) Reconcile(ctx context.Context, parcelID string) (*models.ParcelState, error) {
	regionID, index, err := grid.ParseParcelID(parcelID)
	if err != nil {
		return nil, err
	}

	lock := s.lockFor(parcelID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.loadRegion(ctx, regionID, index); err != nil {
		return nil, err
	}

	var record *ParcelRecord
	err = s.callLedger(ctx, "get_parcel_record", func(ctx context.Context) error {
		fetched, fetchErr := s.client.GetParcelRecord(ctx, regionID, index)
		if fetchErr != nil {
			return fetchErr
		}
		record = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}

	state, err := s.repo.FindState(ctx, regionID, index)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load parcel state")
	}
	if record == nil {
		// Ledger has never seen the parcel; nothing local to correct.
		return state, nil
	}

	if state == nil {
		state = &models.ParcelState{RegionID: regionID, GridIndex: index}
	}
	state.Owner = record.Owner
	state.SalePrice = record.SalePrice
	state.HasHouse = record.HasHouse
	state.BusinessLicense = record.License
	state.BusinessRevenue = record.Revenue
	state.Status = statusFromRecord(record)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if state.ID == uuid.Nil {
			return repo.CreateState(ctx, state)
		}
		return repo.SaveState(ctx, state)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist reconciled state")
	}
	s.invalidate(ctx, parcelID)
	return state, nil
}

func statusFromRecord(record *ParcelRecord) enums.ParcelStatus {
	if record.Owner == nil || record.SalePrice != nil {
		return enums.ParcelStatusForSale
	}
	return enums.ParcelStatusOwned
}

// loadOwned parses, locks, and loads a parcel that must already be claimed
// by the calling wallet. The returned unlock must be deferred by the caller.
func (s *service) loadOwned(ctx context.Context, parcelID, wallet string) (*models.ParcelState, func(), error) {
	regionID, index, err := grid.ParseParcelID(parcelID)
	if err != nil {
		return nil, nil, err
	}
	if wallet == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "wallet missing")
	}

	lock := s.lockFor(parcelID)
	lock.Lock()
	unlock := func() { lock.Unlock() }

	if _, err := s.loadRegion(ctx, regionID, index); err != nil {
		unlock()
		return nil, nil, err
	}
	state, err := s.repo.FindState(ctx, regionID, index)
	if err != nil {
		unlock()
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load parcel state")
	}
	if state == nil || state.Owner == nil {
		unlock()
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotOwner, "parcel is unclaimed")
	}
	if *state.Owner != wallet {
		unlock()
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotOwner, "wallet does not own parcel")
	}
	return state, unlock, nil
}

func (s *service) persistWithEvent(ctx context.Context, state *models.ParcelState, event outbox.DomainEvent) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.SaveState(ctx, state); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save parcel state")
		}
		return s.outbox.Emit(ctx, tx, event)
	})
}
