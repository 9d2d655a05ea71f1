package ledger

import (
	"errors"
	"testing"

	"pointchain/state"
	"pointchain/storage"
)

// A merchant record alongside a zero MerchantCount cannot be produced through
// the public operations, so the underflow guard is exercised by seeding the
// records directly. The failed revoke must leave the record untouched.
func TestRevokeMerchantCountUnderflowWritesNothing(t *testing.T) {
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	st := state.NewManager(db)
	engine := NewEngine(st)

	var admin, merchant Address
	admin[31] = 0x01
	merchant[31] = 0x10

	platform := &PlatformState{
		Admin:               admin,
		Treasury:            admin,
		NativeToPointsRatio: 1,
		MerchantCount:       0,
		Active:              true,
	}
	if err := st.KVPut(platformKey(), platform); err != nil {
		t.Fatalf("seed platform: %v", err)
	}
	if err := st.KVPut(merchantKey(merchant), &MerchantRecord{Wallet: merchant, Authorized: true}); err != nil {
		t.Fatalf("seed merchant: %v", err)
	}

	if err := engine.RevokeMerchant(admin, merchant); !errors.Is(err, ErrArithmeticOverflow) {
		t.Fatalf("expected ErrArithmeticOverflow, got %v", err)
	}

	record, err := engine.GetMerchantRecord(merchant)
	if err != nil {
		t.Fatalf("get merchant record: %v", err)
	}
	if !record.Authorized {
		t.Fatalf("failed revoke must not persist the authorization flip")
	}
}
