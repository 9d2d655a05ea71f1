package ledger_test

import (
	"testing"
)

// Operations where two identity parameters can name the same address must
// settle against one staged balance, not clobber earlier writes with stale
// reads.

func TestRedeemPointsSelfTransferIsNeutral(t *testing.T) {
	engine := newTestEngine(t)
	initPlatform(t, engine)
	registerMerchant(t, engine, 1_000*unit)
	fundNative(t, engine, merchant, 200_000_000)

	// Merchant mints to their own wallet, then redeems against themselves.
	if _, err := engine.MintPoints(merchant, merchant, 100*unit, ""); err != nil {
		t.Fatalf("mint points: %v", err)
	}

	receipt, err := engine.RedeemPoints(merchant, merchant, 40*unit, "self")
	if err != nil {
		t.Fatalf("redeem points: %v", err)
	}
	if receipt.ConsumerBalance != 100*unit || receipt.MerchantBalance != 100*unit {
		t.Fatalf("self-redeem must be net zero, got consumer=%d merchant=%d", receipt.ConsumerBalance, receipt.MerchantBalance)
	}

	balance, err := engine.GetBalance(merchant)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if balance != 100*unit {
		t.Fatalf("balance changed by self-redeem: got %d, want %d", balance, 100*unit)
	}
	checkConservation(t, engine, merchant)

	// A self-redeem larger than the balance still fails.
	if _, err := engine.RedeemPoints(merchant, merchant, 200*unit, ""); err == nil {
		t.Fatalf("expected insufficient balance for oversized self-redeem")
	}
}

func TestMintPointsTreasuryAsMerchant(t *testing.T) {
	engine := newTestEngine(t)
	initPlatform(t, engine)
	if _, err := engine.RegisterMerchant(admin, treasury, 1_000*unit); err != nil {
		t.Fatalf("register treasury as merchant: %v", err)
	}
	fundNative(t, engine, treasury, 10_000_000)

	receipt, err := engine.MintPoints(treasury, consumer, unit, "")
	if err != nil {
		t.Fatalf("mint points: %v", err)
	}
	wantFee := uint64(baseFee + (unit/1_000)*feeRate)
	if receipt.FeePaid != wantFee {
		t.Fatalf("fee mismatch: got %d, want %d", receipt.FeePaid, wantFee)
	}

	// The fee is paid by the treasury to itself: native balance must not move.
	native, err := engine.GetNativeBalance(treasury)
	if err != nil {
		t.Fatalf("get native balance: %v", err)
	}
	if native != 10_000_000 {
		t.Fatalf("treasury native balance changed by fee self-payment: got %d", native)
	}

	record, err := engine.GetMerchantRecord(treasury)
	if err != nil {
		t.Fatalf("get merchant record: %v", err)
	}
	if record.TotalFeesPaid != wantFee {
		t.Fatalf("fee accounting mismatch: got %d, want %d", record.TotalFeesPaid, wantFee)
	}
	checkConservation(t, engine, consumer)
}

func TestDepositNativeTreasuryAsMerchant(t *testing.T) {
	engine := newTestEngine(t)
	initPlatform(t, engine)
	if _, err := engine.RegisterMerchant(admin, treasury, 0); err != nil {
		t.Fatalf("register treasury as merchant: %v", err)
	}
	fundNative(t, engine, treasury, 1_000_000_000)

	receipt, err := engine.DepositNative(treasury, 500_000_000)
	if err != nil {
		t.Fatalf("deposit native: %v", err)
	}
	if receipt.PointsMinted != 50*unit {
		t.Fatalf("points minted mismatch: got %d, want %d", receipt.PointsMinted, 50*unit)
	}

	// Payment flows back to the payer: native balance must not move.
	native, err := engine.GetNativeBalance(treasury)
	if err != nil {
		t.Fatalf("get native balance: %v", err)
	}
	if native != 1_000_000_000 {
		t.Fatalf("treasury native balance changed by self-deposit: got %d", native)
	}
	checkConservation(t, engine, treasury)
}

func TestPurchaseWithNativeSelfPurchase(t *testing.T) {
	engine := newTestEngine(t)
	initPlatform(t, engine)
	registerMerchant(t, engine, 0)
	fundNative(t, engine, merchant, 10_000_000)

	const price = 2_000_000
	receipt, err := engine.PurchaseWithNative(merchant, merchant, product(0x51), price, unit)
	if err != nil {
		t.Fatalf("purchase with native: %v", err)
	}
	wantFee := uint64(baseFee + ((unit+999)/1_000)*feeRate)
	if receipt.FeePaid != wantFee {
		t.Fatalf("fee mismatch: got %d, want %d", receipt.FeePaid, wantFee)
	}

	// Price flows customer->merchant on the same address; only the fee leaves.
	native, err := engine.GetNativeBalance(merchant)
	if err != nil {
		t.Fatalf("get native balance: %v", err)
	}
	if native != 10_000_000-wantFee {
		t.Fatalf("native balance after self-purchase: got %d, want %d", native, 10_000_000-wantFee)
	}

	balance, err := engine.GetBalance(merchant)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if balance != unit {
		t.Fatalf("reward mismatch: got %d, want %d", balance, unit)
	}

	treasuryNative, err := engine.GetNativeBalance(treasury)
	if err != nil {
		t.Fatalf("get treasury native balance: %v", err)
	}
	if treasuryNative != wantFee {
		t.Fatalf("treasury fee mismatch: got %d, want %d", treasuryNative, wantFee)
	}
	checkConservation(t, engine, merchant)
}
