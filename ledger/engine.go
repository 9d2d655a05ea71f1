package ledger

import (
	"bytes"
	"sort"
	"sync"
	"time"

	"pointchain/events"
)

// Engine executes loyalty ledger operations against a backing State. All
// mutating operations are serialized under a single mutex and validate every
// precondition before the first write, so a failed operation leaves the state
// untouched.
type Engine struct {
	mu      sync.Mutex
	st      State
	emitter events.Emitter
	now     func() time.Time
}

// NewEngine creates an engine backed by the provided state.
func NewEngine(st State) *Engine {
	return &Engine{
		st:      st,
		emitter: events.NoopEmitter{},
		now:     time.Now,
	}
}

// SetEmitter configures the event emitter used to broadcast ledger updates.
// Passing nil resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetClock overrides the time source. Intended for tests.
func (e *Engine) SetClock(now func() time.Time) {
	if now != nil {
		e.now = now
	}
}

func (e *Engine) emit(evt events.Event) {
	if e.emitter != nil {
		e.emitter.Emit(evt)
	}
}

func (e *Engine) timestamp() uint64 {
	return uint64(e.now().UTC().Unix())
}

// --- record accessors ---

func (e *Engine) platform() (*PlatformState, error) {
	platform := new(PlatformState)
	found, err := e.st.KVGet(platformKey(), platform)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotInitialized
	}
	return platform, nil
}

func (e *Engine) activePlatform() (*PlatformState, error) {
	platform, err := e.platform()
	if err != nil {
		return nil, err
	}
	if !platform.Active {
		return nil, ErrPlatformInactive
	}
	return platform, nil
}

func (e *Engine) merchant(addr Address) (*MerchantRecord, bool, error) {
	record := new(MerchantRecord)
	found, err := e.st.KVGet(merchantKey(addr), record)
	if err != nil {
		return nil, false, err
	}
	return record, found, nil
}

// authorizedMerchant resolves a merchant record and requires the
// authorization gate to be open. A missing record fails the same way as a
// revoked one: the caller is simply not an authorized merchant.
func (e *Engine) authorizedMerchant(addr Address) (*MerchantRecord, error) {
	record, found, err := e.merchant(addr)
	if err != nil {
		return nil, err
	}
	if !found || !record.Authorized {
		return nil, ErrMerchantNotAuthorized
	}
	return record, nil
}

func (e *Engine) balance(addr Address) (uint64, error) {
	var balance uint64
	if _, err := e.st.KVGet(balanceKey(addr), &balance); err != nil {
		return 0, err
	}
	return balance, nil
}

func (e *Engine) nativeBalance(addr Address) (uint64, error) {
	var balance uint64
	if _, err := e.st.KVGet(nativeBalanceKey(addr), &balance); err != nil {
		return 0, err
	}
	return balance, nil
}

func (e *Engine) putBalance(addr Address, amount uint64) error {
	return e.st.KVPut(balanceKey(addr), amount)
}

func (e *Engine) putNativeBalance(addr Address, amount uint64) error {
	return e.st.KVPut(nativeBalanceKey(addr), amount)
}

// balanceSheet stages point and native balance mutations for one operation.
// Staged values are keyed by address, so two parameters naming the same
// identity mutate a single entry instead of clobbering each other with stale
// reads at write time. The store is untouched until flush.
type balanceSheet struct {
	e      *Engine
	points map[Address]uint64
	native map[Address]uint64
}

func (e *Engine) newBalanceSheet() *balanceSheet {
	return &balanceSheet{
		e:      e,
		points: make(map[Address]uint64),
		native: make(map[Address]uint64),
	}
}

func (s *balanceSheet) pointsOf(addr Address) (uint64, error) {
	if v, ok := s.points[addr]; ok {
		return v, nil
	}
	v, err := s.e.balance(addr)
	if err != nil {
		return 0, err
	}
	s.points[addr] = v
	return v, nil
}

func (s *balanceSheet) nativeOf(addr Address) (uint64, error) {
	if v, ok := s.native[addr]; ok {
		return v, nil
	}
	v, err := s.e.nativeBalance(addr)
	if err != nil {
		return 0, err
	}
	s.native[addr] = v
	return v, nil
}

func (s *balanceSheet) creditPoints(addr Address, amount uint64) error {
	current, err := s.pointsOf(addr)
	if err != nil {
		return err
	}
	next, err := checkedAdd(current, amount)
	if err != nil {
		return err
	}
	s.points[addr] = next
	return nil
}

func (s *balanceSheet) debitPoints(addr Address, amount uint64, insufficient error) error {
	current, err := s.pointsOf(addr)
	if err != nil {
		return err
	}
	if current < amount {
		return insufficient
	}
	s.points[addr] = current - amount
	return nil
}

func (s *balanceSheet) creditNative(addr Address, amount uint64) error {
	current, err := s.nativeOf(addr)
	if err != nil {
		return err
	}
	next, err := checkedAdd(current, amount)
	if err != nil {
		return err
	}
	s.native[addr] = next
	return nil
}

func (s *balanceSheet) debitNative(addr Address, amount uint64, insufficient error) error {
	current, err := s.nativeOf(addr)
	if err != nil {
		return err
	}
	if current < amount {
		return insufficient
	}
	s.native[addr] = current - amount
	return nil
}

func (s *balanceSheet) flush() error {
	for addr, v := range s.points {
		if err := s.e.putBalance(addr, v); err != nil {
			return err
		}
	}
	for addr, v := range s.native {
		if err := s.e.putNativeBalance(addr, v); err != nil {
			return err
		}
	}
	return nil
}

// --- operations ---

// InitializePlatform writes the singleton platform configuration. A second
// call is rejected so a deployed platform's admin cannot be hijacked.
func (e *Engine) InitializePlatform(cfg InitConfig) (*PlatformState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	exists, err := e.st.KVHas(platformKey())
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyInitialized
	}
	if cfg.Admin.IsZero() || cfg.Treasury.IsZero() {
		return nil, ErrInvalidConfig
	}
	if cfg.TokenDecimals > 9 {
		return nil, ErrInvalidDecimals
	}
	if cfg.NativeToPointsRatio == 0 {
		return nil, ErrInvalidRatio
	}

	platform := &PlatformState{
		Admin:               cfg.Admin,
		Treasury:            cfg.Treasury,
		TokenDecimals:       cfg.TokenDecimals,
		MaxSupply:           cfg.MaxSupply,
		CurrentSupply:       0,
		BaseMintFee:         cfg.BaseMintFee,
		FeeRatePerThousand:  cfg.FeeRatePerThousand,
		NativeToPointsRatio: cfg.NativeToPointsRatio,
		MerchantCount:       0,
		Active:              true,
	}
	if err := e.st.KVPut(platformKey(), platform); err != nil {
		return nil, err
	}
	e.emit(events.PlatformInitialized{
		Admin:         cfg.Admin,
		Treasury:      cfg.Treasury,
		TokenDecimals: cfg.TokenDecimals,
		MaxSupply:     cfg.MaxSupply,
	})
	return platform, nil
}

// SetPlatformActive toggles the platform kill switch. It is deliberately
// exempt from the kill switch itself so the admin can recover the platform.
func (e *Engine) SetPlatformActive(caller Address, active bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	platform, err := e.platform()
	if err != nil {
		return err
	}
	if caller != platform.Admin {
		return ErrUnauthorizedAdmin
	}
	if platform.Active == active {
		return nil
	}
	platform.Active = active
	if err := e.st.KVPut(platformKey(), platform); err != nil {
		return err
	}
	e.emit(events.PlatformActiveSet{Caller: caller, Active: active})
	return nil
}

// CreditNative credits an account's native-currency balance. Only the admin
// may mint native funds; merchants need them to cover protocol fees.
func (e *Engine) CreditNative(caller, account Address, amount uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	platform, err := e.platform()
	if err != nil {
		return err
	}
	if caller != platform.Admin {
		return ErrUnauthorizedAdmin
	}
	if amount == 0 {
		return ErrZeroAmount
	}
	balance, err := e.nativeBalance(account)
	if err != nil {
		return err
	}
	newBalance, err := checkedAdd(balance, amount)
	if err != nil {
		return err
	}
	if err := e.putNativeBalance(account, newBalance); err != nil {
		return err
	}
	e.emit(events.NativeCredited{Account: account, Amount: amount})
	return nil
}

// RegisterMerchant authorizes a merchant with the given mint allowance.
func (e *Engine) RegisterMerchant(caller, merchant Address, mintAllowance uint64) (*MerchantRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	platform, err := e.activePlatform()
	if err != nil {
		return nil, err
	}
	if caller != platform.Admin {
		return nil, ErrUnauthorizedAdmin
	}
	if merchant.IsZero() {
		return nil, ErrInvalidConfig
	}
	_, found, err := e.merchant(merchant)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, ErrAlreadyRegistered
	}

	record := &MerchantRecord{
		Wallet:        merchant,
		Authorized:    true,
		MintAllowance: mintAllowance,
		RegisteredAt:  e.timestamp(),
	}
	if err := e.st.KVPut(merchantKey(merchant), record); err != nil {
		return nil, err
	}
	if err := e.st.KVAppend(merchantIndexKey(), merchant[:]); err != nil {
		return nil, err
	}
	platform.MerchantCount++
	if err := e.st.KVPut(platformKey(), platform); err != nil {
		return nil, err
	}
	e.emit(events.MerchantRegistered{
		Merchant:      merchant,
		MintAllowance: mintAllowance,
		RegisteredAt:  record.RegisteredAt,
	})
	return record, nil
}

// RevokeMerchant closes a merchant's authorization gate. The record and its
// counters persist for audit. Revoking an already-revoked merchant fails.
// Revocation is allowed while the platform is inactive so an incident
// response can still cut off merchants.
func (e *Engine) RevokeMerchant(caller, merchant Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	platform, err := e.platform()
	if err != nil {
		return err
	}
	if caller != platform.Admin {
		return ErrUnauthorizedAdmin
	}
	record, found, err := e.merchant(merchant)
	if err != nil {
		return err
	}
	if !found {
		return ErrMerchantNotFound
	}
	if !record.Authorized {
		return ErrMerchantNotAuthorized
	}

	if platform.MerchantCount == 0 {
		return ErrArithmeticOverflow
	}

	record.Authorized = false
	if err := e.st.KVPut(merchantKey(merchant), record); err != nil {
		return err
	}
	platform.MerchantCount--
	if err := e.st.KVPut(platformKey(), platform); err != nil {
		return err
	}
	e.emit(events.MerchantRevoked{Merchant: merchant, RevokedAt: e.timestamp()})
	return nil
}

// MintPoints issues points from an authorized merchant to a consumer. The
// merchant pays the protocol fee in native currency within the same
// operation; allowance, supply cap, and fee funding are all validated before
// any balance moves.
func (e *Engine) MintPoints(merchant, consumer Address, amount uint64, reference string) (*MintReceipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	platform, err := e.activePlatform()
	if err != nil {
		return nil, err
	}
	if len(reference) > MaxReferenceLen {
		return nil, ErrReferenceTooLong
	}
	record, err := e.authorizedMerchant(merchant)
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, ErrZeroAmount
	}
	if amount > record.MintAllowance {
		return nil, ErrAllowanceExceeded
	}
	newSupply, err := checkedAdd(platform.CurrentSupply, amount)
	if err != nil {
		return nil, err
	}
	if newSupply > platform.MaxSupply {
		return nil, ErrSupplyCapExceeded
	}
	fee, err := platform.MintFee(amount)
	if err != nil {
		return nil, err
	}
	sheet := e.newBalanceSheet()
	if err := sheet.debitNative(merchant, fee, ErrInsufficientFeePayment); err != nil {
		return nil, err
	}
	if err := sheet.creditNative(platform.Treasury, fee); err != nil {
		return nil, err
	}
	if err := sheet.creditPoints(consumer, amount); err != nil {
		return nil, err
	}
	newConsumerBalance, err := sheet.pointsOf(consumer)
	if err != nil {
		return nil, err
	}
	totalMinted, err := checkedAdd(record.TotalMinted, amount)
	if err != nil {
		return nil, err
	}
	totalFees, err := checkedAdd(record.TotalFeesPaid, fee)
	if err != nil {
		return nil, err
	}
	collected, err := checkedAdd(platform.TotalFeesCollected, fee)
	if err != nil {
		return nil, err
	}

	if err := sheet.flush(); err != nil {
		return nil, err
	}
	record.MintAllowance -= amount
	record.TotalMinted = totalMinted
	record.TotalFeesPaid = totalFees
	if err := e.st.KVPut(merchantKey(merchant), record); err != nil {
		return nil, err
	}
	platform.CurrentSupply = newSupply
	platform.TotalFeesCollected = collected
	if err := e.st.KVPut(platformKey(), platform); err != nil {
		return nil, err
	}
	e.emit(events.PointsMinted{
		Merchant:  merchant,
		Consumer:  consumer,
		Amount:    amount,
		FeePaid:   fee,
		Reference: reference,
		Timestamp: e.timestamp(),
	})
	return &MintReceipt{
		ConsumerBalance: newConsumerBalance,
		Supply:          newSupply,
		FeePaid:         fee,
	}, nil
}

// DepositNative converts a merchant's native currency into points at the
// configured ratio. This is a direct purchase of points and does not draw on
// the mint allowance, but it does respect the supply cap.
func (e *Engine) DepositNative(merchant Address, nativeAmount uint64) (*DepositReceipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	platform, err := e.activePlatform()
	if err != nil {
		return nil, err
	}
	record, err := e.authorizedMerchant(merchant)
	if err != nil {
		return nil, err
	}
	if nativeAmount == 0 {
		return nil, ErrInsufficientDeposit
	}
	points, err := platform.DepositPoints(nativeAmount)
	if err != nil {
		return nil, err
	}
	if points == 0 {
		return nil, ErrZeroAmount
	}
	newSupply, err := checkedAdd(platform.CurrentSupply, points)
	if err != nil {
		return nil, err
	}
	if newSupply > platform.MaxSupply {
		return nil, ErrSupplyCapExceeded
	}
	sheet := e.newBalanceSheet()
	if err := sheet.debitNative(merchant, nativeAmount, ErrInsufficientBalance); err != nil {
		return nil, err
	}
	if err := sheet.creditNative(platform.Treasury, nativeAmount); err != nil {
		return nil, err
	}
	if err := sheet.creditPoints(merchant, points); err != nil {
		return nil, err
	}
	newMerchantBalance, err := sheet.pointsOf(merchant)
	if err != nil {
		return nil, err
	}
	totalMinted, err := checkedAdd(record.TotalMinted, points)
	if err != nil {
		return nil, err
	}

	if err := sheet.flush(); err != nil {
		return nil, err
	}
	record.TotalMinted = totalMinted
	if err := e.st.KVPut(merchantKey(merchant), record); err != nil {
		return nil, err
	}
	platform.CurrentSupply = newSupply
	if err := e.st.KVPut(platformKey(), platform); err != nil {
		return nil, err
	}
	e.emit(events.NativeDeposited{
		Merchant:     merchant,
		NativeAmount: nativeAmount,
		PointsMinted: points,
		Ratio:        platform.NativeToPointsRatio,
		Timestamp:    e.timestamp(),
	})
	return &DepositReceipt{
		MerchantBalance: newMerchantBalance,
		Supply:          newSupply,
		PointsMinted:    points,
	}, nil
}

// PurchaseWithPoints burns points from a customer to pay for a product at a
// merchant. Supply decreases; the merchant receives no points. The
// (customer, product) pair is the idempotency key: a second purchase of the
// same product by the same customer is rejected.
func (e *Engine) PurchaseWithPoints(customer, merchant Address, product ProductID, pointsAmount uint64) (*PurchaseRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	platform, err := e.activePlatform()
	if err != nil {
		return nil, err
	}
	record, err := e.authorizedMerchant(merchant)
	if err != nil {
		return nil, err
	}
	if pointsAmount == 0 {
		return nil, ErrZeroAmount
	}
	exists, err := e.st.KVHas(purchaseKey(customer, product))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicatePurchase
	}
	customerBalance, err := e.balance(customer)
	if err != nil {
		return nil, err
	}
	if customerBalance < pointsAmount {
		return nil, ErrInsufficientPoints
	}
	newSupply, err := checkedSub(platform.CurrentSupply, pointsAmount)
	if err != nil {
		return nil, err
	}
	totalRedeemed, err := checkedAdd(record.TotalRedeemed, pointsAmount)
	if err != nil {
		return nil, err
	}

	purchase := &PurchaseRecord{
		Customer:    customer,
		Merchant:    merchant,
		ProductID:   product,
		PaymentType: PaymentPoints,
		AmountPaid:  pointsAmount,
		PurchasedAt: e.timestamp(),
	}
	if err := e.putBalance(customer, customerBalance-pointsAmount); err != nil {
		return nil, err
	}
	record.TotalRedeemed = totalRedeemed
	if err := e.st.KVPut(merchantKey(merchant), record); err != nil {
		return nil, err
	}
	platform.CurrentSupply = newSupply
	if err := e.st.KVPut(platformKey(), platform); err != nil {
		return nil, err
	}
	if err := e.st.KVPut(purchaseKey(customer, product), purchase); err != nil {
		return nil, err
	}
	e.emit(events.ProductPurchased{
		Customer:    customer,
		Merchant:    merchant,
		ProductID:   product,
		PaymentType: uint8(PaymentPoints),
		AmountPaid:  pointsAmount,
		Timestamp:   purchase.PurchasedAt,
	})
	return purchase, nil
}

// PurchaseWithNative settles a product purchase in native currency: the
// customer pays the price to the merchant, pays the protocol fee to the
// treasury, and earns freshly minted points. The reward mint respects the
// supply cap but, like DepositNative, does not draw on the mint allowance.
func (e *Engine) PurchaseWithNative(customer, merchant Address, product ProductID, price, pointsReward uint64) (*PurchaseRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	platform, err := e.activePlatform()
	if err != nil {
		return nil, err
	}
	record, err := e.authorizedMerchant(merchant)
	if err != nil {
		return nil, err
	}
	if price == 0 || pointsReward == 0 {
		return nil, ErrZeroAmount
	}
	exists, err := e.st.KVHas(purchaseKey(customer, product))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicatePurchase
	}
	fee, err := platform.PurchaseFee(pointsReward)
	if err != nil {
		return nil, err
	}
	total, err := checkedAdd(price, fee)
	if err != nil {
		return nil, err
	}
	sheet := e.newBalanceSheet()
	customerNative, err := sheet.nativeOf(customer)
	if err != nil {
		return nil, err
	}
	if customerNative < price {
		return nil, ErrInsufficientBalance
	}
	if customerNative < total {
		return nil, ErrInsufficientFeePayment
	}
	newSupply, err := checkedAdd(platform.CurrentSupply, pointsReward)
	if err != nil {
		return nil, err
	}
	if newSupply > platform.MaxSupply {
		return nil, ErrSupplyCapExceeded
	}
	if err := sheet.debitNative(customer, total, ErrInsufficientFeePayment); err != nil {
		return nil, err
	}
	if err := sheet.creditNative(merchant, price); err != nil {
		return nil, err
	}
	if err := sheet.creditNative(platform.Treasury, fee); err != nil {
		return nil, err
	}
	if err := sheet.creditPoints(customer, pointsReward); err != nil {
		return nil, err
	}
	totalMinted, err := checkedAdd(record.TotalMinted, pointsReward)
	if err != nil {
		return nil, err
	}
	totalFees, err := checkedAdd(record.TotalFeesPaid, fee)
	if err != nil {
		return nil, err
	}
	collected, err := checkedAdd(platform.TotalFeesCollected, fee)
	if err != nil {
		return nil, err
	}

	purchase := &PurchaseRecord{
		Customer:     customer,
		Merchant:     merchant,
		ProductID:    product,
		PaymentType:  PaymentNative,
		AmountPaid:   price,
		PointsEarned: pointsReward,
		FeePaid:      fee,
		PurchasedAt:  e.timestamp(),
	}
	if err := sheet.flush(); err != nil {
		return nil, err
	}
	record.TotalMinted = totalMinted
	record.TotalFeesPaid = totalFees
	if err := e.st.KVPut(merchantKey(merchant), record); err != nil {
		return nil, err
	}
	platform.CurrentSupply = newSupply
	platform.TotalFeesCollected = collected
	if err := e.st.KVPut(platformKey(), platform); err != nil {
		return nil, err
	}
	if err := e.st.KVPut(purchaseKey(customer, product), purchase); err != nil {
		return nil, err
	}
	e.emit(events.ProductPurchased{
		Customer:     customer,
		Merchant:     merchant,
		ProductID:    product,
		PaymentType:  uint8(PaymentNative),
		AmountPaid:   price,
		PointsEarned: pointsReward,
		FeePaid:      fee,
		Timestamp:    purchase.PurchasedAt,
	})
	return purchase, nil
}

// RedeemPoints transfers points from a consumer to a merchant for a catalog
// reward. Unlike PurchaseWithPoints this is supply-neutral: the points move
// rather than burn.
func (e *Engine) RedeemPoints(consumer, merchant Address, amount uint64, reference string) (*RedeemReceipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.activePlatform(); err != nil {
		return nil, err
	}
	if len(reference) > MaxReferenceLen {
		return nil, ErrReferenceTooLong
	}
	record, err := e.authorizedMerchant(merchant)
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, ErrZeroAmount
	}
	sheet := e.newBalanceSheet()
	if err := sheet.debitPoints(consumer, amount, ErrInsufficientBalance); err != nil {
		return nil, err
	}
	if err := sheet.creditPoints(merchant, amount); err != nil {
		return nil, err
	}
	newConsumerBalance, err := sheet.pointsOf(consumer)
	if err != nil {
		return nil, err
	}
	newMerchantBalance, err := sheet.pointsOf(merchant)
	if err != nil {
		return nil, err
	}
	totalRedeemed, err := checkedAdd(record.TotalRedeemed, amount)
	if err != nil {
		return nil, err
	}

	if err := sheet.flush(); err != nil {
		return nil, err
	}
	record.TotalRedeemed = totalRedeemed
	if err := e.st.KVPut(merchantKey(merchant), record); err != nil {
		return nil, err
	}
	e.emit(events.PointsRedeemed{
		Consumer:  consumer,
		Merchant:  merchant,
		Amount:    amount,
		Reference: reference,
		Timestamp: e.timestamp(),
	})
	return &RedeemReceipt{
		ConsumerBalance: newConsumerBalance,
		MerchantBalance: newMerchantBalance,
	}, nil
}

// --- queries ---

// GetPlatformState returns the platform configuration and counters.
func (e *Engine) GetPlatformState() (*PlatformState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.platform()
}

// GetMerchantRecord returns a merchant's record, revoked or not.
func (e *Engine) GetMerchantRecord(addr Address) (*MerchantRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	record, found, err := e.merchant(addr)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrMerchantNotFound
	}
	return record, nil
}

// GetBalance returns an identity's point balance. Unknown identities hold
// zero.
func (e *Engine) GetBalance(addr Address) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.balance(addr)
}

// GetNativeBalance returns an identity's native-currency balance.
func (e *Engine) GetNativeBalance(addr Address) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nativeBalance(addr)
}

// GetPurchaseRecord returns the purchase record for a (customer, product)
// pair.
func (e *Engine) GetPurchaseRecord(customer Address, product ProductID) (*PurchaseRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	record := new(PurchaseRecord)
	found, err := e.st.KVGet(purchaseKey(customer, product), record)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrPurchaseNotFound
	}
	return record, nil
}

// ListMerchants returns every merchant identity ever registered, in
// deterministic order.
func (e *Engine) ListMerchants() ([]Address, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var raw [][]byte
	if err := e.st.KVGetList(merchantIndexKey(), &raw); err != nil {
		return nil, err
	}
	seen := make(map[Address]struct{}, len(raw))
	merchants := make([]Address, 0, len(raw))
	for _, entry := range raw {
		var addr Address
		copy(addr[:], entry)
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		merchants = append(merchants, addr)
	}
	sort.Slice(merchants, func(i, j int) bool {
		return bytes.Compare(merchants[i][:], merchants[j][:]) < 0
	})
	return merchants, nil
}
