package rpc

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"pointchain/ledger"
)

func TestErrorLabelUsesClosedTaxonomy(t *testing.T) {
	if got := errorLabel(nil); got != "" {
		t.Fatalf("nil error must map to empty label, got %q", got)
	}
	if got := errorLabel(ledger.ErrZeroAmount); got != "zero_amount" {
		t.Fatalf("sentinel label mismatch: %q", got)
	}
	wrapped := fmt.Errorf("executing: %w", ledger.ErrDuplicatePurchase)
	if got := errorLabel(wrapped); got != "duplicate_purchase" {
		t.Fatalf("wrapped sentinel label mismatch: %q", got)
	}
	if got := errorLabel(errors.New("disk on fire")); got != "internal" {
		t.Fatalf("unknown errors must collapse to internal, got %q", got)
	}
}

func TestErrorLabelNeverCarriesCallerText(t *testing.T) {
	// Param decode errors embed caller-supplied strings; the label must not.
	payload := "___totally-unique-caller-string___"
	err := errInvalidParams{fmt.Errorf("amount: invalid amount %q", payload)}
	got := errorLabel(err)
	if got != "invalid_params" {
		t.Fatalf("invalid params label mismatch: %q", got)
	}
	if strings.Contains(got, payload) {
		t.Fatalf("label leaked caller text: %q", got)
	}
}

func TestKnownMethodGatesMetrics(t *testing.T) {
	for _, method := range []string{
		"ledger_initializePlatform", "ledger_mintPoints", "ledger_redeemPoints",
		"ledger_getPlatform", "ledger_getBalance", "ledger_listMerchants",
	} {
		if !knownMethod(method) {
			t.Fatalf("expected %s to be known", method)
		}
	}
	for _, method := range []string{"", "eth_call", "ledger_unknown", "LEDGER_MINTPOINTS"} {
		if knownMethod(method) {
			t.Fatalf("unknown method %q must not be observed", method)
		}
	}
}

func TestEveryLedgerSentinelHasALabel(t *testing.T) {
	seen := make(map[string]struct{}, len(errorLabels))
	for _, entry := range errorLabels {
		if entry.label == "" {
			t.Fatalf("empty label for %v", entry.err)
		}
		if _, dup := seen[entry.label]; dup {
			t.Fatalf("duplicate label %q", entry.label)
		}
		seen[entry.label] = struct{}{}
		if got := errorLabel(entry.err); got != entry.label {
			t.Fatalf("label mismatch for %v: %q vs %q", entry.err, got, entry.label)
		}
	}
}
