package rpc

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"

	"pointchain/crypto"
	"pointchain/ledger"
)

type initializePlatformParams struct {
	Admin               string `json:"admin"`
	Treasury            string `json:"treasury"`
	TokenDecimals       uint8  `json:"tokenDecimals"`
	MaxSupply           string `json:"maxSupply"`
	BaseMintFee         string `json:"baseMintFee"`
	FeeRatePerThousand  string `json:"feeRatePerThousand"`
	NativeToPointsRatio string `json:"nativeToPointsRatio"`
}

type setActiveParams struct {
	Caller string `json:"caller"`
	Active bool   `json:"active"`
}

type creditNativeParams struct {
	Caller  string `json:"caller"`
	Account string `json:"account"`
	Amount  string `json:"amount"`
}

type registerMerchantParams struct {
	Caller        string `json:"caller"`
	Merchant      string `json:"merchant"`
	MintAllowance string `json:"mintAllowance"`
}

type revokeMerchantParams struct {
	Caller   string `json:"caller"`
	Merchant string `json:"merchant"`
}

type mintPointsParams struct {
	Merchant  string `json:"merchant"`
	Consumer  string `json:"consumer"`
	Amount    string `json:"amount"`
	Reference string `json:"reference,omitempty"`
}

type depositNativeParams struct {
	Merchant string `json:"merchant"`
	Amount   string `json:"amount"`
}

type purchaseWithPointsParams struct {
	Customer  string `json:"customer"`
	Merchant  string `json:"merchant"`
	ProductID string `json:"productId"`
	Amount    string `json:"amount"`
}

type purchaseWithNativeParams struct {
	Customer     string `json:"customer"`
	Merchant     string `json:"merchant"`
	ProductID    string `json:"productId"`
	Price        string `json:"price"`
	PointsReward string `json:"pointsReward"`
}

type redeemPointsParams struct {
	Consumer  string `json:"consumer"`
	Merchant  string `json:"merchant"`
	Amount    string `json:"amount"`
	Reference string `json:"reference,omitempty"`
}

type addressParams struct {
	Address string `json:"address"`
}

type purchaseQueryParams struct {
	Customer  string `json:"customer"`
	ProductID string `json:"productId"`
}

type platformResult struct {
	Admin               string `json:"admin"`
	Treasury            string `json:"treasury"`
	TokenDecimals       uint8  `json:"tokenDecimals"`
	MaxSupply           string `json:"maxSupply"`
	CurrentSupply       string `json:"currentSupply"`
	BaseMintFee         string `json:"baseMintFee"`
	FeeRatePerThousand  string `json:"feeRatePerThousand"`
	NativeToPointsRatio string `json:"nativeToPointsRatio"`
	MerchantCount       uint32 `json:"merchantCount"`
	TotalFeesCollected  string `json:"totalFeesCollected"`
	Active              bool   `json:"active"`
}

type merchantResult struct {
	Wallet        string `json:"wallet"`
	Authorized    bool   `json:"authorized"`
	MintAllowance string `json:"mintAllowance"`
	TotalMinted   string `json:"totalMinted"`
	TotalRedeemed string `json:"totalRedeemed"`
	TotalFeesPaid string `json:"totalFeesPaid"`
	RegisteredAt  uint64 `json:"registeredAt"`
}

type balanceResult struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

type mintResult struct {
	ConsumerBalance string `json:"consumerBalance"`
	Supply          string `json:"supply"`
	FeePaid         string `json:"feePaid"`
}

type depositResult struct {
	MerchantBalance string `json:"merchantBalance"`
	Supply          string `json:"supply"`
	PointsMinted    string `json:"pointsMinted"`
}

type redeemResult struct {
	ConsumerBalance string `json:"consumerBalance"`
	MerchantBalance string `json:"merchantBalance"`
}

type purchaseResult struct {
	Customer     string `json:"customer"`
	Merchant     string `json:"merchant"`
	ProductID    string `json:"productId"`
	PaymentType  string `json:"paymentType"`
	AmountPaid   string `json:"amountPaid"`
	PointsEarned string `json:"pointsEarned"`
	FeePaid      string `json:"feePaid"`
	PurchasedAt  uint64 `json:"purchasedAt"`
}

func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) != 1 {
		return errInvalidParams{fmt.Errorf("expected exactly one params object")}
	}
	if err := json.Unmarshal(req.Params[0], out); err != nil {
		return errInvalidParams{fmt.Errorf("invalid params: %w", err)}
	}
	return nil
}

func parseAddress(field, value string) (ledger.Address, error) {
	decoded, err := crypto.DecodeAddress(value)
	if err != nil {
		return ledger.Address{}, errInvalidParams{fmt.Errorf("%s: %w", field, err)}
	}
	return ledger.Address(decoded.Array()), nil
}

func parseAmount(field, value string) (uint64, error) {
	amount, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errInvalidParams{fmt.Errorf("%s: invalid amount %q", field, value)}
	}
	return amount, nil
}

func parseProduct(value string) (ledger.ProductID, error) {
	raw, err := hex.DecodeString(value)
	if err != nil || len(raw) != len(ledger.ProductID{}) {
		return ledger.ProductID{}, errInvalidParams{fmt.Errorf("productId must be %d hex-encoded bytes", len(ledger.ProductID{}))}
	}
	var product ledger.ProductID
	copy(product[:], raw)
	return product, nil
}

func formatAddress(addr ledger.Address) string {
	return crypto.NewAddress(addr[:]).String()
}

func formatAmount(amount uint64) string {
	return strconv.FormatUint(amount, 10)
}

func formatPlatform(platform *ledger.PlatformState) platformResult {
	return platformResult{
		Admin:               formatAddress(platform.Admin),
		Treasury:            formatAddress(platform.Treasury),
		TokenDecimals:       platform.TokenDecimals,
		MaxSupply:           formatAmount(platform.MaxSupply),
		CurrentSupply:       formatAmount(platform.CurrentSupply),
		BaseMintFee:         formatAmount(platform.BaseMintFee),
		FeeRatePerThousand:  formatAmount(platform.FeeRatePerThousand),
		NativeToPointsRatio: formatAmount(platform.NativeToPointsRatio),
		MerchantCount:       platform.MerchantCount,
		TotalFeesCollected:  formatAmount(platform.TotalFeesCollected),
		Active:              platform.Active,
	}
}

func formatMerchant(record *ledger.MerchantRecord) merchantResult {
	return merchantResult{
		Wallet:        formatAddress(record.Wallet),
		Authorized:    record.Authorized,
		MintAllowance: formatAmount(record.MintAllowance),
		TotalMinted:   formatAmount(record.TotalMinted),
		TotalRedeemed: formatAmount(record.TotalRedeemed),
		TotalFeesPaid: formatAmount(record.TotalFeesPaid),
		RegisteredAt:  record.RegisteredAt,
	}
}

func formatPurchase(record *ledger.PurchaseRecord) purchaseResult {
	paymentType := "native"
	if record.PaymentType == ledger.PaymentPoints {
		paymentType = "points"
	}
	return purchaseResult{
		Customer:     formatAddress(record.Customer),
		Merchant:     formatAddress(record.Merchant),
		ProductID:    hex.EncodeToString(record.ProductID[:]),
		PaymentType:  paymentType,
		AmountPaid:   formatAmount(record.AmountPaid),
		PointsEarned: formatAmount(record.PointsEarned),
		FeePaid:      formatAmount(record.FeePaid),
		PurchasedAt:  record.PurchasedAt,
	}
}

func (s *Server) dispatch(req *RPCRequest) (interface{}, error) {
	switch req.Method {
	case "ledger_initializePlatform":
		return s.handleInitializePlatform(req)
	case "ledger_setPlatformActive":
		return s.handleSetPlatformActive(req)
	case "ledger_creditNative":
		return s.handleCreditNative(req)
	case "ledger_registerMerchant":
		return s.handleRegisterMerchant(req)
	case "ledger_revokeMerchant":
		return s.handleRevokeMerchant(req)
	case "ledger_mintPoints":
		return s.handleMintPoints(req)
	case "ledger_depositNative":
		return s.handleDepositNative(req)
	case "ledger_purchaseWithPoints":
		return s.handlePurchaseWithPoints(req)
	case "ledger_purchaseWithNative":
		return s.handlePurchaseWithNative(req)
	case "ledger_redeemPoints":
		return s.handleRedeemPoints(req)
	case "ledger_getPlatform":
		return s.handleGetPlatform(req)
	case "ledger_getMerchant":
		return s.handleGetMerchant(req)
	case "ledger_listMerchants":
		return s.handleListMerchants(req)
	case "ledger_getBalance":
		return s.handleGetBalance(req)
	case "ledger_getNativeBalance":
		return s.handleGetNativeBalance(req)
	case "ledger_getPurchase":
		return s.handleGetPurchase(req)
	default:
		return nil, errMethodNotFound
	}
}

func (s *Server) handleInitializePlatform(req *RPCRequest) (interface{}, error) {
	var params initializePlatformParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	admin, err := parseAddress("admin", params.Admin)
	if err != nil {
		return nil, err
	}
	treasury, err := parseAddress("treasury", params.Treasury)
	if err != nil {
		return nil, err
	}
	maxSupply, err := parseAmount("maxSupply", params.MaxSupply)
	if err != nil {
		return nil, err
	}
	baseMintFee, err := parseAmount("baseMintFee", params.BaseMintFee)
	if err != nil {
		return nil, err
	}
	feeRate, err := parseAmount("feeRatePerThousand", params.FeeRatePerThousand)
	if err != nil {
		return nil, err
	}
	ratio, err := parseAmount("nativeToPointsRatio", params.NativeToPointsRatio)
	if err != nil {
		return nil, err
	}
	platform, err := s.engine.InitializePlatform(ledger.InitConfig{
		Admin:               admin,
		Treasury:            treasury,
		TokenDecimals:       params.TokenDecimals,
		MaxSupply:           maxSupply,
		BaseMintFee:         baseMintFee,
		FeeRatePerThousand:  feeRate,
		NativeToPointsRatio: ratio,
	})
	if err != nil {
		return nil, err
	}
	return formatPlatform(platform), nil
}

func (s *Server) handleSetPlatformActive(req *RPCRequest) (interface{}, error) {
	var params setActiveParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		return nil, err
	}
	if err := s.engine.SetPlatformActive(caller, params.Active); err != nil {
		return nil, err
	}
	return map[string]bool{"active": params.Active}, nil
}

func (s *Server) handleCreditNative(req *RPCRequest) (interface{}, error) {
	var params creditNativeParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		return nil, err
	}
	account, err := parseAddress("account", params.Account)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", params.Amount)
	if err != nil {
		return nil, err
	}
	if err := s.engine.CreditNative(caller, account, amount); err != nil {
		return nil, err
	}
	balance, err := s.engine.GetNativeBalance(account)
	if err != nil {
		return nil, err
	}
	return balanceResult{Address: params.Account, Amount: formatAmount(balance)}, nil
}

func (s *Server) handleRegisterMerchant(req *RPCRequest) (interface{}, error) {
	var params registerMerchantParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		return nil, err
	}
	merchant, err := parseAddress("merchant", params.Merchant)
	if err != nil {
		return nil, err
	}
	allowance, err := parseAmount("mintAllowance", params.MintAllowance)
	if err != nil {
		return nil, err
	}
	record, err := s.engine.RegisterMerchant(caller, merchant, allowance)
	if err != nil {
		return nil, err
	}
	return formatMerchant(record), nil
}

func (s *Server) handleRevokeMerchant(req *RPCRequest) (interface{}, error) {
	var params revokeMerchantParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		return nil, err
	}
	merchant, err := parseAddress("merchant", params.Merchant)
	if err != nil {
		return nil, err
	}
	if err := s.engine.RevokeMerchant(caller, merchant); err != nil {
		return nil, err
	}
	record, err := s.engine.GetMerchantRecord(merchant)
	if err != nil {
		return nil, err
	}
	return formatMerchant(record), nil
}

func (s *Server) handleMintPoints(req *RPCRequest) (interface{}, error) {
	var params mintPointsParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	merchant, err := parseAddress("merchant", params.Merchant)
	if err != nil {
		return nil, err
	}
	consumer, err := parseAddress("consumer", params.Consumer)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", params.Amount)
	if err != nil {
		return nil, err
	}
	receipt, err := s.engine.MintPoints(merchant, consumer, amount, params.Reference)
	if err != nil {
		return nil, err
	}
	return mintResult{
		ConsumerBalance: formatAmount(receipt.ConsumerBalance),
		Supply:          formatAmount(receipt.Supply),
		FeePaid:         formatAmount(receipt.FeePaid),
	}, nil
}

func (s *Server) handleDepositNative(req *RPCRequest) (interface{}, error) {
	var params depositNativeParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	merchant, err := parseAddress("merchant", params.Merchant)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", params.Amount)
	if err != nil {
		return nil, err
	}
	receipt, err := s.engine.DepositNative(merchant, amount)
	if err != nil {
		return nil, err
	}
	return depositResult{
		MerchantBalance: formatAmount(receipt.MerchantBalance),
		Supply:          formatAmount(receipt.Supply),
		PointsMinted:    formatAmount(receipt.PointsMinted),
	}, nil
}

func (s *Server) handlePurchaseWithPoints(req *RPCRequest) (interface{}, error) {
	var params purchaseWithPointsParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	customer, err := parseAddress("customer", params.Customer)
	if err != nil {
		return nil, err
	}
	merchant, err := parseAddress("merchant", params.Merchant)
	if err != nil {
		return nil, err
	}
	product, err := parseProduct(params.ProductID)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", params.Amount)
	if err != nil {
		return nil, err
	}
	record, err := s.engine.PurchaseWithPoints(customer, merchant, product, amount)
	if err != nil {
		return nil, err
	}
	return formatPurchase(record), nil
}

func (s *Server) handlePurchaseWithNative(req *RPCRequest) (interface{}, error) {
	var params purchaseWithNativeParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	customer, err := parseAddress("customer", params.Customer)
	if err != nil {
		return nil, err
	}
	merchant, err := parseAddress("merchant", params.Merchant)
	if err != nil {
		return nil, err
	}
	product, err := parseProduct(params.ProductID)
	if err != nil {
		return nil, err
	}
	price, err := parseAmount("price", params.Price)
	if err != nil {
		return nil, err
	}
	reward, err := parseAmount("pointsReward", params.PointsReward)
	if err != nil {
		return nil, err
	}
	record, err := s.engine.PurchaseWithNative(customer, merchant, product, price, reward)
	if err != nil {
		return nil, err
	}
	return formatPurchase(record), nil
}

func (s *Server) handleRedeemPoints(req *RPCRequest) (interface{}, error) {
	var params redeemPointsParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	consumer, err := parseAddress("consumer", params.Consumer)
	if err != nil {
		return nil, err
	}
	merchant, err := parseAddress("merchant", params.Merchant)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", params.Amount)
	if err != nil {
		return nil, err
	}
	receipt, err := s.engine.RedeemPoints(consumer, merchant, amount, params.Reference)
	if err != nil {
		return nil, err
	}
	return redeemResult{
		ConsumerBalance: formatAmount(receipt.ConsumerBalance),
		MerchantBalance: formatAmount(receipt.MerchantBalance),
	}, nil
}

func (s *Server) handleGetPlatform(req *RPCRequest) (interface{}, error) {
	platform, err := s.engine.GetPlatformState()
	if err != nil {
		return nil, err
	}
	return formatPlatform(platform), nil
}

func (s *Server) handleGetMerchant(req *RPCRequest) (interface{}, error) {
	var params addressParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	merchant, err := parseAddress("address", params.Address)
	if err != nil {
		return nil, err
	}
	record, err := s.engine.GetMerchantRecord(merchant)
	if err != nil {
		return nil, err
	}
	return formatMerchant(record), nil
}

func (s *Server) handleListMerchants(req *RPCRequest) (interface{}, error) {
	merchants, err := s.engine.ListMerchants()
	if err != nil {
		return nil, err
	}
	encoded := make([]string, 0, len(merchants))
	for _, merchant := range merchants {
		encoded = append(encoded, formatAddress(merchant))
	}
	return encoded, nil
}

func (s *Server) handleGetBalance(req *RPCRequest) (interface{}, error) {
	var params addressParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	addr, err := parseAddress("address", params.Address)
	if err != nil {
		return nil, err
	}
	balance, err := s.engine.GetBalance(addr)
	if err != nil {
		return nil, err
	}
	return balanceResult{Address: params.Address, Amount: formatAmount(balance)}, nil
}

func (s *Server) handleGetNativeBalance(req *RPCRequest) (interface{}, error) {
	var params addressParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	addr, err := parseAddress("address", params.Address)
	if err != nil {
		return nil, err
	}
	balance, err := s.engine.GetNativeBalance(addr)
	if err != nil {
		return nil, err
	}
	return balanceResult{Address: params.Address, Amount: formatAmount(balance)}, nil
}

func (s *Server) handleGetPurchase(req *RPCRequest) (interface{}, error) {
	var params purchaseQueryParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	customer, err := parseAddress("customer", params.Customer)
	if err != nil {
		return nil, err
	}
	product, err := parseProduct(params.ProductID)
	if err != nil {
		return nil, err
	}
	record, err := s.engine.GetPurchaseRecord(customer, product)
	if err != nil {
		return nil, err
	}
	return formatPurchase(record), nil
}
