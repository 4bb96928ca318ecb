package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/arcadialabs/landgrid-backend/pkg/db/models"
	"github.com/arcadialabs/landgrid-backend/pkg/enums"
)

// The production schema relies on postgres defaults, so the sqlite fixture
// declares its tables by hand and tests always set IDs explicitly.
const ledgerTestSchema = `
CREATE TABLE parcel_states (
	id TEXT PRIMARY KEY,
	region_id TEXT NOT NULL,
	grid_index INTEGER NOT NULL,
	owner TEXT,
	status TEXT NOT NULL DEFAULT 'for_sale',
	sale_price INTEGER,
	last_sale_price INTEGER,
	has_house BOOLEAN NOT NULL DEFAULT 0,
	business_license TEXT NOT NULL DEFAULT 'none',
	business_revenue INTEGER NOT NULL DEFAULT 0,
	acquired_at DATETIME,
	created_at DATETIME,
	updated_at DATETIME,
	UNIQUE (region_id, grid_index)
);
CREATE TABLE ownership_transfers (
	id TEXT PRIMARY KEY,
	region_id TEXT NOT NULL,
	grid_index INTEGER NOT NULL,
	from_owner TEXT,
	to_owner TEXT NOT NULL,
	price INTEGER NOT NULL,
	created_at DATETIME
);
CREATE TABLE revenue_events (
	id TEXT PRIMARY KEY,
	region_id TEXT NOT NULL,
	grid_index INTEGER NOT NULL,
	amount INTEGER NOT NULL,
	created_at DATETIME
);
CREATE TABLE regions (
	id TEXT PRIMARY KEY,
	world_id TEXT NOT NULL,
	name TEXT NOT NULL,
	width INTEGER NOT NULL,
	height INTEGER NOT NULL,
	founder_plots INTEGER NOT NULL DEFAULT 0,
	offset_x INTEGER NOT NULL,
	offset_z INTEGER NOT NULL,
	status TEXT NOT NULL DEFAULT 'active',
	creator TEXT,
	zone_base_prices TEXT,
	created_at DATETIME,
	updated_at DATETIME
);
`

func newLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err, "open sqlite")
	require.NoError(t, conn.Exec(ledgerTestSchema).Error, "create schema")
	return conn
}

func seedState(t *testing.T, db *gorm.DB, state *models.ParcelState) *models.ParcelState {
	t.Helper()
	if state.ID == uuid.Nil {
		state.ID = uuid.New()
	}
	require.NoError(t, db.Create(state).Error)
	return state
}

func TestRepositoryFindState(t *testing.T) {
	db := newLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	owner := "0xabc"
	seedState(t, db, &models.ParcelState{
		RegionID:  "genesis",
		GridIndex: 12,
		Owner:     &owner,
		Status:    enums.ParcelStatusOwned,
	})

	found, err := repo.FindState(ctx, "genesis", 12)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "genesis", found.RegionID)
	assert.Equal(t, 12, found.GridIndex)
	require.NotNil(t, found.Owner)
	assert.Equal(t, owner, *found.Owner)
	assert.Equal(t, enums.ParcelStatusOwned, found.Status)

	missing, err := repo.FindState(ctx, "genesis", 13)
	require.NoError(t, err)
	assert.Nil(t, missing, "absent row reads as nil, not an error")
}

func TestRepositoryTransferOwnershipSwapsOnlyListedParcels(t *testing.T) {
	db := newLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seller := "0xseller"
	price := int64(500)
	seedState(t, db, &models.ParcelState{
		RegionID:  "genesis",
		GridIndex: 7,
		Owner:     &seller,
		Status:    enums.ParcelStatusForSale,
		SalePrice: &price,
	})

	acquiredAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	swapped, err := repo.TransferOwnership(ctx, "genesis", 7, OwnershipUpdate{
		Owner:         "0xbuyer",
		LastSalePrice: price,
		AcquiredAt:    acquiredAt,
	})
	require.NoError(t, err)
	require.True(t, swapped)

	state, err := repo.FindState(ctx, "genesis", 7)
	require.NoError(t, err)
	require.NotNil(t, state)
	require.NotNil(t, state.Owner)
	assert.Equal(t, "0xbuyer", *state.Owner)
	assert.Equal(t, enums.ParcelStatusOwned, state.Status)
	assert.Nil(t, state.SalePrice, "listing price clears on sale")
	require.NotNil(t, state.LastSalePrice)
	assert.Equal(t, price, *state.LastSalePrice)

	// Second swap must lose: the row is no longer for sale.
	swapped, err = repo.TransferOwnership(ctx, "genesis", 7, OwnershipUpdate{
		Owner:         "0xlate",
		LastSalePrice: price,
		AcquiredAt:    acquiredAt,
	})
	require.NoError(t, err)
	assert.False(t, swapped)

	state, err = repo.FindState(ctx, "genesis", 7)
	require.NoError(t, err)
	require.NotNil(t, state.Owner)
	assert.Equal(t, "0xbuyer", *state.Owner, "losing swap leaves the row untouched")
}

func TestRepositoryTransferOwnershipMissingRow(t *testing.T) {
	db := newLedgerTestDB(t)
	repo := NewRepository(db)

	swapped, err := repo.TransferOwnership(context.Background(), "genesis", 99, OwnershipUpdate{
		Owner:         "0xbuyer",
		LastSalePrice: 100,
		AcquiredAt:    time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.False(t, swapped)
}

func TestRepositoryTransfersAppendInOrder(t *testing.T) {
	db := newLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	first := "0xfirst"
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	transfers := []*models.OwnershipTransfer{
		{ID: uuid.New(), RegionID: "genesis", GridIndex: 3, ToOwner: first, Price: 100, CreatedAt: base},
		{ID: uuid.New(), RegionID: "genesis", GridIndex: 3, FromOwner: &first, ToOwner: "0xsecond", Price: 250, CreatedAt: base.Add(time.Hour)},
	}
	for _, transfer := range transfers {
		require.NoError(t, repo.AppendTransfer(ctx, transfer))
	}
	// A different parcel's history must not bleed in.
	require.NoError(t, repo.AppendTransfer(ctx, &models.OwnershipTransfer{
		ID: uuid.New(), RegionID: "genesis", GridIndex: 4, ToOwner: "0xother", Price: 90, CreatedAt: base,
	}))

	history, err := repo.ListTransfers(ctx, "genesis", 3)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Nil(t, history[0].FromOwner, "initial claim has no prior owner")
	assert.Equal(t, first, history[0].ToOwner)
	assert.Equal(t, "0xsecond", history[1].ToOwner)
	assert.Equal(t, int64(250), history[1].Price)
}

func TestRepositoryAppendRevenue(t *testing.T) {
	db := newLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.AppendRevenue(ctx, &models.RevenueEvent{
		ID: uuid.New(), RegionID: "genesis", GridIndex: 5, Amount: 40,
	}))
	require.NoError(t, repo.AppendRevenue(ctx, &models.RevenueEvent{
		ID: uuid.New(), RegionID: "genesis", GridIndex: 5, Amount: 60,
	}))

	var total int64
	require.NoError(t, db.Model(&models.RevenueEvent{}).
		Where("region_id = ? AND grid_index = ?", "genesis", 5).
		Select("COALESCE(SUM(amount), 0)").Scan(&total).Error)
	assert.Equal(t, int64(100), total)
}

func TestRepositoryFindRegion(t *testing.T) {
	db := newLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Region{
		ID:      "genesis",
		WorldID: "world-prime",
		Name:    "Genesis",
		Width:   64,
		Height:  64,
		Status:  enums.RegionStatusActive,
	}).Error)

	region, err := repo.FindRegion(ctx, "genesis")
	require.NoError(t, err)
	require.NotNil(t, region)
	assert.Equal(t, "world-prime", region.WorldID)
	assert.Equal(t, 64*64, region.ParcelCount())

	missing, err := repo.FindRegion(ctx, "nowhere")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepositoryWithTxSharesTheTransaction(t *testing.T) {
	db := newLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		scoped := repo.WithTx(tx)
		if err := scoped.CreateState(ctx, &models.ParcelState{
			ID: uuid.New(), RegionID: "genesis", GridIndex: 1, Status: enums.ParcelStatusForSale,
		}); err != nil {
			return err
		}
		return fmt.Errorf("force rollback")
	})
	require.Error(t, err)

	state, err := repo.FindState(ctx, "genesis", 1)
	require.NoError(t, err)
	assert.Nil(t, state, "rolled back write is invisible outside the transaction")
}
