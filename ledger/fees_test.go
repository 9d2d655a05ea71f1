package ledger_test

import (
	"errors"
	"math"
	"testing"

	"pointchain/ledger"
)

func TestMintFeeSchedule(t *testing.T) {
	platform := &ledger.PlatformState{BaseMintFee: 5_000, FeeRatePerThousand: 1_000}

	cases := []struct {
		amount uint64
		want   uint64
	}{
		{0, 5_000},
		{999, 5_000},
		{1_000, 6_000},
		{1_999, 6_000},
		{2_000, 7_000},
		{1_000_000, 1_005_000},
	}
	for _, tc := range cases {
		got, err := platform.MintFee(tc.amount)
		if err != nil {
			t.Fatalf("mint fee for %d: %v", tc.amount, err)
		}
		if got != tc.want {
			t.Fatalf("mint fee for %d: expected %d, got %d", tc.amount, tc.want, got)
		}
	}
}

func TestPurchaseFeeRoundsUp(t *testing.T) {
	platform := &ledger.PlatformState{BaseMintFee: 5_000, FeeRatePerThousand: 1_000}

	cases := []struct {
		reward uint64
		want   uint64
	}{
		{1, 6_000},
		{999, 6_000},
		{1_000, 6_000},
		{1_001, 7_000},
	}
	for _, tc := range cases {
		got, err := platform.PurchaseFee(tc.reward)
		if err != nil {
			t.Fatalf("purchase fee for %d: %v", tc.reward, err)
		}
		if got != tc.want {
			t.Fatalf("purchase fee for %d: expected %d, got %d", tc.reward, tc.want, got)
		}
	}
}

func TestFeeOverflow(t *testing.T) {
	platform := &ledger.PlatformState{BaseMintFee: 1, FeeRatePerThousand: math.MaxUint64}
	if _, err := platform.MintFee(2_000); !errors.Is(err, ledger.ErrArithmeticOverflow) {
		t.Fatalf("expected ErrArithmeticOverflow, got %v", err)
	}
	if _, err := platform.PurchaseFee(math.MaxUint64); !errors.Is(err, ledger.ErrArithmeticOverflow) {
		t.Fatalf("expected ErrArithmeticOverflow, got %v", err)
	}
}

func TestDepositPoints(t *testing.T) {
	platform := &ledger.PlatformState{TokenDecimals: 6, NativeToPointsRatio: 100}

	// One whole native coin at ratio 100 is 100 whole points.
	got, err := platform.DepositPoints(ledger.NativeUnits)
	if err != nil {
		t.Fatalf("deposit points: %v", err)
	}
	if got != 100_000_000 {
		t.Fatalf("expected 100_000_000, got %d", got)
	}

	// Sub-point remainders floor away.
	got, err = platform.DepositPoints(3)
	if err != nil {
		t.Fatalf("deposit points: %v", err)
	}
	if got != 0 {
		t.Fatalf("expected floor to 0, got %d", got)
	}

	if _, err := platform.DepositPoints(math.MaxUint64); !errors.Is(err, ledger.ErrArithmeticOverflow) {
		t.Fatalf("expected ErrArithmeticOverflow, got %v", err)
	}
}
