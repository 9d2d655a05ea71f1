package rpc

import (
	"errors"

	"pointchain/ledger"
)

func queryMethod(method string) bool {
	switch method {
	case "ledger_getPlatform", "ledger_getMerchant", "ledger_listMerchants",
		"ledger_getBalance", "ledger_getNativeBalance", "ledger_getPurchase":
		return true
	}
	return false
}

func knownMethod(method string) bool {
	return mutatingMethod(method) || queryMethod(method)
}

var errorLabels = []struct {
	err   error
	label string
}{
	{ledger.ErrAlreadyInitialized, "already_initialized"},
	{ledger.ErrNotInitialized, "not_initialized"},
	{ledger.ErrInvalidDecimals, "invalid_decimals"},
	{ledger.ErrInvalidRatio, "invalid_ratio"},
	{ledger.ErrInvalidConfig, "invalid_config"},
	{ledger.ErrUnauthorizedAdmin, "unauthorized_admin"},
	{ledger.ErrAlreadyRegistered, "already_registered"},
	{ledger.ErrMerchantNotFound, "merchant_not_found"},
	{ledger.ErrMerchantNotAuthorized, "merchant_not_authorized"},
	{ledger.ErrPlatformInactive, "platform_inactive"},
	{ledger.ErrZeroAmount, "zero_amount"},
	{ledger.ErrInsufficientDeposit, "insufficient_deposit"},
	{ledger.ErrInsufficientFeePayment, "insufficient_fee_payment"},
	{ledger.ErrAllowanceExceeded, "allowance_exceeded"},
	{ledger.ErrSupplyCapExceeded, "supply_cap_exceeded"},
	{ledger.ErrInsufficientBalance, "insufficient_balance"},
	{ledger.ErrInsufficientPoints, "insufficient_points"},
	{ledger.ErrDuplicatePurchase, "duplicate_purchase"},
	{ledger.ErrPurchaseNotFound, "purchase_not_found"},
	{ledger.ErrReferenceTooLong, "reference_too_long"},
	{ledger.ErrArithmeticOverflow, "arithmetic_overflow"},
}

// errorLabel maps a dispatch error onto the closed label taxonomy used for
// the failure metric. Raw error text never becomes a label value because part
// of it is caller-controlled.
func errorLabel(err error) string {
	if err == nil {
		return ""
	}
	var invalid errInvalidParams
	if errors.As(err, &invalid) {
		return "invalid_params"
	}
	for _, entry := range errorLabels {
		if errors.Is(err, entry.err) {
			return entry.label
		}
	}
	return "internal"
}
