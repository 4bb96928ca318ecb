package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/arcadialabs/landgrid-backend/pkg/enums"
	"github.com/arcadialabs/landgrid-backend/pkg/errors"
)

// MockClient is the deterministic in-process ledger used in mock mode and in
// tests. It applies the same compare-and-swap rules a live ledger would, so
// the adapter behaves identically against either backend.
type MockClient struct {
	mtx      sync.Mutex
	records  map[string]*ParcelRecord
	balances map[string]int64
	// useBalances turns on funds checking; without it every wallet is
	// treated as solvent.
	useBalances bool
	failNext    error
}

func NewMockClient() *MockClient {
	return &MockClient{
		records:  make(map[string]*ParcelRecord),
		balances: make(map[string]int64),
	}
}

func recordKey(regionID string, index int) string {
	return fmt.Sprintf("%s-%d", regionID, index)
}

// SetBalance enables funds checking and credits the wallet.
func (m *MockClient) SetBalance(wallet string, amount int64) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.useBalances = true
	m.balances[wallet] = amount
}

// FailNext makes the next submit call return err once. Used to exercise
// rejection and timeout paths.
func (m *MockClient) FailNext(err error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.failNext = err
}

// Seed installs a record directly, bypassing purchase rules.
func (m *MockClient) Seed(record ParcelRecord) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	copied := record
	m.records[recordKey(record.RegionID, record.Index)] = &copied
}

func (m *MockClient) takeFailure() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func (m *MockClient) GetParcelRecord(ctx context.Context, regionID string, index int) (*ParcelRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mtx.Lock()
	defer m.mtx.Unlock()
	record, ok := m.records[recordKey(regionID, index)]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (m *MockClient) GetOwnerParcels(ctx context.Context, regionID, owner string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mtx.Lock()
	defer m.mtx.Unlock()
	var indexes []int
	for _, record := range m.records {
		if record.RegionID == regionID && record.Owner != nil && *record.Owner == owner {
			indexes = append(indexes, record.Index)
		}
	}
	return indexes, nil
}

func (m *MockClient) SubmitPurchase(ctx context.Context, regionID string, index int, buyer string, payment int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}

	// Listings live in the adapter's database, not the ledger, so a resale
	// arrives here as a purchase of an already-claimed record. The ledger
	// only refuses a buyer repurchasing their own parcel; state-machine
	// conflicts are the adapter's job.
	key := recordKey(regionID, index)
	record, claimed := m.records[key]
	if claimed && record.Owner != nil && *record.Owner == buyer {
		return errors.New(errors.CodeAlreadyOwned, "buyer already owns parcel")
	}
	if m.useBalances && m.balances[buyer] < payment {
		return errors.New(errors.CodeInsufficientFunds, "insufficient funds")
	}
	if m.useBalances {
		m.balances[buyer] -= payment
		if claimed && record.Owner != nil {
			m.balances[*record.Owner] += payment
		}
	}

	owner := buyer
	if !claimed {
		record = &ParcelRecord{RegionID: regionID, Index: index, License: enums.BusinessLicenseNone}
		m.records[key] = record
	}
	record.Owner = &owner
	record.SalePrice = nil
	return nil
}

func (m *MockClient) SubmitLicensePurchase(ctx context.Context, regionID string, index int, owner string, license enums.BusinessLicense) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	record, err := m.ownedBy(regionID, index, owner)
	if err != nil {
		return err
	}
	record.License = license
	return nil
}

func (m *MockClient) SubmitBuildHouse(ctx context.Context, regionID string, index int, owner string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	record, err := m.ownedBy(regionID, index, owner)
	if err != nil {
		return err
	}
	record.HasHouse = true
	return nil
}

func (m *MockClient) SubmitRevenueRecord(ctx context.Context, regionID string, index int, amount int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	if amount < 0 {
		return errors.New(errors.CodeValidation, "revenue amount must be non-negative")
	}
	record, ok := m.records[recordKey(regionID, index)]
	if !ok {
		return errors.New(errors.CodeLedgerRejected, "parcel not on ledger")
	}
	record.Revenue += amount
	return nil
}

func (m *MockClient) ownedBy(regionID string, index int, owner string) (*ParcelRecord, error) {
	record, ok := m.records[recordKey(regionID, index)]
	if !ok || record.Owner == nil {
		return nil, errors.New(errors.CodeLedgerRejected, "parcel not on ledger")
	}
	if *record.Owner != owner {
		return nil, errors.New(errors.CodeNotOwner, "wallet does not own parcel")
	}
	return record, nil
}
