package ledger

import (
	"context"
	"testing"

	"github.com/arcadialabs/landgrid-backend/pkg/enums"
	pkgerrors "github.com/arcadialabs/landgrid-backend/pkg/errors"
)

func TestMockClientFundsChecking(t *testing.T) {
	mock := NewMockClient()
	mock.SetBalance("0xalice", 50)
	ctx := context.Background()

	err := mock.SubmitPurchase(ctx, "genesis", 0, "0xalice", 96)
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	mock.SetBalance("0xalice", 100)
	if err := mock.SubmitPurchase(ctx, "genesis", 0, "0xalice", 96); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	record, err := mock.GetParcelRecord(ctx, "genesis", 0)
	if err != nil || record == nil {
		t.Fatalf("get record: %v %v", record, err)
	}
	if record.Owner == nil || *record.Owner != "0xalice" {
		t.Fatalf("unexpected owner %v", record.Owner)
	}
}

func TestMockClientResaleSettlesToSeller(t *testing.T) {
	mock := NewMockClient()
	mock.SetBalance("0xalice", 100)
	mock.SetBalance("0xbob", 500)
	ctx := context.Background()

	if err := mock.SubmitPurchase(ctx, "genesis", 0, "0xalice", 96); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := mock.SubmitPurchase(ctx, "genesis", 0, "0xbob", 400); err != nil {
		t.Fatalf("resale: %v", err)
	}

	mock.mtx.Lock()
	aliceBalance := mock.balances["0xalice"]
	mock.mtx.Unlock()
	if aliceBalance != 404 {
		t.Fatalf("seller should receive the payment, balance %d", aliceBalance)
	}
}

func TestMockClientSelfPurchaseRejected(t *testing.T) {
	mock := NewMockClient()
	ctx := context.Background()

	if err := mock.SubmitPurchase(ctx, "genesis", 0, "0xalice", 96); err != nil {
		t.Fatalf("claim: %v", err)
	}
	err := mock.SubmitPurchase(ctx, "genesis", 0, "0xalice", 96)
	if !pkgerrors.HasCode(err, pkgerrors.CodeAlreadyOwned) {
		t.Fatalf("expected already-owned, got %v", err)
	}
}

func TestMockClientOwnershipGuards(t *testing.T) {
	mock := NewMockClient()
	ctx := context.Background()

	err := mock.SubmitBuildHouse(ctx, "genesis", 0, "0xalice")
	if !pkgerrors.HasCode(err, pkgerrors.CodeLedgerRejected) {
		t.Fatalf("expected rejection on unclaimed parcel, got %v", err)
	}

	if err := mock.SubmitPurchase(ctx, "genesis", 0, "0xalice", 96); err != nil {
		t.Fatalf("claim: %v", err)
	}
	err = mock.SubmitBuildHouse(ctx, "genesis", 0, "0xbob")
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotOwner) {
		t.Fatalf("expected not-owner, got %v", err)
	}
	if err := mock.SubmitLicensePurchase(ctx, "genesis", 0, "0xalice", enums.BusinessLicenseRetail); err != nil {
		t.Fatalf("license: %v", err)
	}
}

func TestMockClientGetOwnerParcels(t *testing.T) {
	mock := NewMockClient()
	ctx := context.Background()

	for _, index := range []int{3, 7, 11} {
		if err := mock.SubmitPurchase(ctx, "genesis", index, "0xalice", 10); err != nil {
			t.Fatalf("claim %d: %v", index, err)
		}
	}
	if err := mock.SubmitPurchase(ctx, "genesis", 4, "0xbob", 10); err != nil {
		t.Fatalf("claim: %v", err)
	}

	indexes, err := mock.GetOwnerParcels(ctx, "genesis", "0xalice")
	if err != nil {
		t.Fatalf("owner parcels: %v", err)
	}
	if len(indexes) != 3 {
		t.Fatalf("expected 3 parcels, got %v", indexes)
	}
}
