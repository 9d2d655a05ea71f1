package ledger

import "errors"

var (
	ErrAlreadyInitialized      = errors.New("ledger: platform already initialized")
	ErrNotInitialized          = errors.New("ledger: platform not initialized")
	ErrInvalidDecimals         = errors.New("ledger: token decimals must be between 0 and 9")
	ErrInvalidRatio            = errors.New("ledger: native-to-points ratio must be greater than zero")
	ErrInvalidConfig           = errors.New("ledger: invalid platform configuration")
	ErrUnauthorizedAdmin       = errors.New("ledger: caller is not the platform admin")
	ErrAlreadyRegistered       = errors.New("ledger: merchant already registered")
	ErrMerchantNotFound        = errors.New("ledger: merchant not registered")
	ErrMerchantNotAuthorized   = errors.New("ledger: merchant not authorized")
	ErrPlatformInactive        = errors.New("ledger: platform is not active")
	ErrZeroAmount              = errors.New("ledger: amount must be greater than zero")
	ErrInsufficientDeposit     = errors.New("ledger: deposit amount must be greater than zero")
	ErrInsufficientFeePayment  = errors.New("ledger: insufficient native balance for protocol fee")
	ErrAllowanceExceeded       = errors.New("ledger: mint amount exceeds merchant allowance")
	ErrSupplyCapExceeded       = errors.New("ledger: mint would exceed maximum supply")
	ErrInsufficientBalance     = errors.New("ledger: insufficient balance")
	ErrInsufficientPoints      = errors.New("ledger: insufficient points balance for purchase")
	ErrDuplicatePurchase       = errors.New("ledger: purchase already recorded for customer and product")
	ErrPurchaseNotFound        = errors.New("ledger: purchase not found")
	ErrReferenceTooLong        = errors.New("ledger: reference exceeds 64 characters")
	ErrArithmeticOverflow      = errors.New("ledger: arithmetic overflow")
)
