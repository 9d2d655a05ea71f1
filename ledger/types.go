package ledger

// Address is an opaque 32-byte ledger identity, compared by exact equality.
type Address [32]byte

// IsZero reports whether the address is the all-zero identity.
func (a Address) IsZero() bool {
	return a == Address{}
}

// ProductID identifies a purchasable product. Callers typically derive it by
// hashing an external product identifier.
type ProductID [32]byte

// PaymentType distinguishes how a purchase was settled.
type PaymentType uint8

const (
	// PaymentNative marks a purchase paid in the chain's native currency.
	PaymentNative PaymentType = iota
	// PaymentPoints marks a purchase paid by burning loyalty points.
	PaymentPoints
)

// MaxReferenceLen caps the free-form reference string attached to mints and
// redemptions.
const MaxReferenceLen = 64

// NativeUnits is the number of base units in one whole native coin.
const NativeUnits = 1_000_000_000

// PlatformState is the singleton configuration and aggregate supply record.
// All point amounts are integers scaled by 10^TokenDecimals; all native
// amounts are integers in base units.
type PlatformState struct {
	Admin               Address
	Treasury            Address
	TokenDecimals       uint8
	MaxSupply           uint64
	CurrentSupply       uint64
	BaseMintFee         uint64
	FeeRatePerThousand  uint64
	NativeToPointsRatio uint64
	MerchantCount       uint32
	TotalFeesCollected  uint64
	Active              bool
}

// MerchantRecord tracks a merchant's authorization and issuance accounting.
// The record persists after revocation so the counters remain auditable.
type MerchantRecord struct {
	Wallet        Address
	Authorized    bool
	MintAllowance uint64
	TotalMinted   uint64
	TotalRedeemed uint64
	TotalFeesPaid uint64
	RegisteredAt  uint64
}

// PurchaseRecord is the immutable audit and replay-protection record written
// once per (customer, product) pair.
type PurchaseRecord struct {
	Customer     Address
	Merchant     Address
	ProductID    ProductID
	PaymentType  PaymentType
	AmountPaid   uint64
	PointsEarned uint64
	FeePaid      uint64
	PurchasedAt  uint64
}

// InitConfig carries the parameters for platform initialization.
type InitConfig struct {
	Admin               Address
	Treasury            Address
	TokenDecimals       uint8
	MaxSupply           uint64
	BaseMintFee         uint64
	FeeRatePerThousand  uint64
	NativeToPointsRatio uint64
}

// MintReceipt reports the balances resulting from a successful mint.
type MintReceipt struct {
	ConsumerBalance uint64
	Supply          uint64
	FeePaid         uint64
}

// DepositReceipt reports the result of a native-currency deposit.
type DepositReceipt struct {
	MerchantBalance uint64
	Supply          uint64
	PointsMinted    uint64
}

// RedeemReceipt reports the balances resulting from a reward redemption.
type RedeemReceipt struct {
	ConsumerBalance uint64
	MerchantBalance uint64
}
