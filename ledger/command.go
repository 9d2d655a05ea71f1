package ledger

import "fmt"

// Command is a closed union over every ledger operation. External dispatchers
// (the RPC layer, CLI tooling) can build commands and hand them to Execute
// instead of calling the typed methods directly.
type Command interface {
	isCommand()
}

type CmdInitializePlatform struct {
	Config InitConfig
}

type CmdSetPlatformActive struct {
	Caller Address
	Active bool
}

type CmdCreditNative struct {
	Caller  Address
	Account Address
	Amount  uint64
}

type CmdRegisterMerchant struct {
	Caller        Address
	Merchant      Address
	MintAllowance uint64
}

type CmdRevokeMerchant struct {
	Caller   Address
	Merchant Address
}

type CmdMintPoints struct {
	Merchant  Address
	Consumer  Address
	Amount    uint64
	Reference string
}

type CmdDepositNative struct {
	Merchant     Address
	NativeAmount uint64
}

type CmdPurchaseWithPoints struct {
	Customer Address
	Merchant Address
	Product  ProductID
	Amount   uint64
}

type CmdPurchaseWithNative struct {
	Customer     Address
	Merchant     Address
	Product      ProductID
	Price        uint64
	PointsReward uint64
}

type CmdRedeemPoints struct {
	Consumer  Address
	Merchant  Address
	Amount    uint64
	Reference string
}

func (CmdInitializePlatform) isCommand() {}
func (CmdSetPlatformActive) isCommand()  {}
func (CmdCreditNative) isCommand()       {}
func (CmdRegisterMerchant) isCommand()   {}
func (CmdRevokeMerchant) isCommand()     {}
func (CmdMintPoints) isCommand()         {}
func (CmdDepositNative) isCommand()      {}
func (CmdPurchaseWithPoints) isCommand() {}
func (CmdPurchaseWithNative) isCommand() {}
func (CmdRedeemPoints) isCommand()       {}

// Execute dispatches a command to the corresponding operation. The result is
// the operation's receipt or record; operations without a result return nil.
func (e *Engine) Execute(cmd Command) (interface{}, error) {
	switch c := cmd.(type) {
	case CmdInitializePlatform:
		return e.InitializePlatform(c.Config)
	case CmdSetPlatformActive:
		return nil, e.SetPlatformActive(c.Caller, c.Active)
	case CmdCreditNative:
		return nil, e.CreditNative(c.Caller, c.Account, c.Amount)
	case CmdRegisterMerchant:
		return e.RegisterMerchant(c.Caller, c.Merchant, c.MintAllowance)
	case CmdRevokeMerchant:
		return nil, e.RevokeMerchant(c.Caller, c.Merchant)
	case CmdMintPoints:
		return e.MintPoints(c.Merchant, c.Consumer, c.Amount, c.Reference)
	case CmdDepositNative:
		return e.DepositNative(c.Merchant, c.NativeAmount)
	case CmdPurchaseWithPoints:
		return e.PurchaseWithPoints(c.Customer, c.Merchant, c.Product, c.Amount)
	case CmdPurchaseWithNative:
		return e.PurchaseWithNative(c.Customer, c.Merchant, c.Product, c.Price, c.PointsReward)
	case CmdRedeemPoints:
		return e.RedeemPoints(c.Consumer, c.Merchant, c.Amount, c.Reference)
	default:
		return nil, fmt.Errorf("ledger: unsupported command %T", cmd)
	}
}
