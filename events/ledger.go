package events

const (
	// TypePlatformInitialized is emitted exactly once when the platform
	// configuration is written.
	TypePlatformInitialized = "ledger.platform.initialized"
	// TypePlatformActiveSet is emitted when the admin toggles the platform
	// kill switch.
	TypePlatformActiveSet = "ledger.platform.active_set"
	// TypeMerchantRegistered is emitted when the admin authorizes a merchant.
	TypeMerchantRegistered = "ledger.merchant.registered"
	// TypeMerchantRevoked is emitted when the admin revokes a merchant.
	TypeMerchantRevoked = "ledger.merchant.revoked"
	// TypePointsMinted is emitted when a merchant issues points to a consumer.
	TypePointsMinted = "ledger.points.minted"
	// TypeNativeDeposited is emitted when a merchant buys points with native
	// currency.
	TypeNativeDeposited = "ledger.native.deposited"
	// TypeNativeCredited is emitted when the admin funds a native balance.
	TypeNativeCredited = "ledger.native.credited"
	// TypePointsRedeemed is emitted when a consumer transfers points to a
	// merchant for a catalog reward.
	TypePointsRedeemed = "ledger.points.redeemed"
	// TypeProductPurchased is emitted for both point-funded and native-funded
	// product purchases.
	TypeProductPurchased = "ledger.product.purchased"
)

// PlatformInitialized captures the configuration written at initialization.
type PlatformInitialized struct {
	Admin         [32]byte
	Treasury      [32]byte
	TokenDecimals uint8
	MaxSupply     uint64
}

func (PlatformInitialized) EventType() string { return TypePlatformInitialized }

// PlatformActiveSet records a kill-switch transition.
type PlatformActiveSet struct {
	Caller [32]byte
	Active bool
}

func (PlatformActiveSet) EventType() string { return TypePlatformActiveSet }

// MerchantRegistered records a new merchant authorization.
type MerchantRegistered struct {
	Merchant      [32]byte
	MintAllowance uint64
	RegisteredAt  uint64
}

func (MerchantRegistered) EventType() string { return TypeMerchantRegistered }

// MerchantRevoked records an authorization withdrawal.
type MerchantRevoked struct {
	Merchant  [32]byte
	RevokedAt uint64
}

func (MerchantRevoked) EventType() string { return TypeMerchantRevoked }

// PointsMinted records a merchant-to-consumer issuance.
type PointsMinted struct {
	Merchant  [32]byte
	Consumer  [32]byte
	Amount    uint64
	FeePaid   uint64
	Reference string
	Timestamp uint64
}

func (PointsMinted) EventType() string { return TypePointsMinted }

// NativeDeposited records a merchant self-mint funded by native currency.
type NativeDeposited struct {
	Merchant     [32]byte
	NativeAmount uint64
	PointsMinted uint64
	Ratio        uint64
	Timestamp    uint64
}

func (NativeDeposited) EventType() string { return TypeNativeDeposited }

// NativeCredited records an admin credit to a native balance.
type NativeCredited struct {
	Account [32]byte
	Amount  uint64
}

func (NativeCredited) EventType() string { return TypeNativeCredited }

// PointsRedeemed records a supply-neutral consumer-to-merchant transfer.
type PointsRedeemed struct {
	Consumer  [32]byte
	Merchant  [32]byte
	Amount    uint64
	Reference string
	Timestamp uint64
}

func (PointsRedeemed) EventType() string { return TypePointsRedeemed }

// ProductPurchased records a purchase settled in either points or native
// currency. PaymentType 0 is native currency, 1 is points.
type ProductPurchased struct {
	Customer     [32]byte
	Merchant     [32]byte
	ProductID    [32]byte
	PaymentType  uint8
	AmountPaid   uint64
	PointsEarned uint64
	FeePaid      uint64
	Timestamp    uint64
}

func (ProductPurchased) EventType() string { return TypeProductPurchased }
