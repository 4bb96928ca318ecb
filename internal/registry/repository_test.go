package registry

import (
	"context"
	"fmt"
	"testing"

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
const registryTestSchema = `
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
`

func newRegistryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err, "open sqlite")
	require.NoError(t, conn.Exec(registryTestSchema).Error, "create schema")
	return conn
}

func seedRegistryState(t *testing.T, conn *gorm.DB, regionID string, index int, owner string) {
	t.Helper()
	state := models.ParcelState{
		ID:        uuid.New(),
		RegionID:  regionID,
		GridIndex: index,
		Owner:     &owner,
		Status:    enums.ParcelStatusOwned,
	}
	require.NoError(t, conn.Create(&state).Error, "seed state %d", index)
}

func TestRepositoryListStatesRange(t *testing.T) {
	conn := newRegistryTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	for _, index := range []int{5, 63, 64, 100, 127, 128, 900} {
		seedRegistryState(t, conn, "genesis", index, "0xalice")
	}
	seedRegistryState(t, conn, "frontier", 70, "0xbob")

	states, err := repo.ListStatesRange(ctx, "genesis", 64, 128)
	require.NoError(t, err)
	indices := make([]int, 0, len(states))
	for _, s := range states {
		indices = append(indices, s.GridIndex)
	}
	assert.Equal(t, []int{64, 100, 127}, indices, "half-open window in grid order")

	states, err = repo.ListStatesRange(ctx, "genesis", 200, 400)
	require.NoError(t, err)
	assert.Empty(t, states, "window with no rows")
}
