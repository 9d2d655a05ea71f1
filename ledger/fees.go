package ledger

// MintFee computes the native-currency fee a merchant owes for minting the
// given point amount: BaseMintFee + floor(amount/1000) * FeeRatePerThousand.
func (p *PlatformState) MintFee(amount uint64) (uint64, error) {
	variable, err := checkedMul(amount/1000, p.FeeRatePerThousand)
	if err != nil {
		return 0, err
	}
	return checkedAdd(p.BaseMintFee, variable)
}

// PurchaseFee computes the fee charged when a native-currency purchase mints a
// point reward. Unlike MintFee the thousands count rounds up, so any non-zero
// reward pays at least one rate increment.
func (p *PlatformState) PurchaseFee(reward uint64) (uint64, error) {
	thousands, err := checkedAdd(reward, 999)
	if err != nil {
		return 0, err
	}
	variable, err := checkedMul(thousands/1000, p.FeeRatePerThousand)
	if err != nil {
		return 0, err
	}
	return checkedAdd(p.BaseMintFee, variable)
}

// DepositPoints converts a native-currency deposit into points:
// native * ratio * 10^decimals / NativeUnits, with floor division.
func (p *PlatformState) DepositPoints(nativeAmount uint64) (uint64, error) {
	scaled, err := checkedMul(nativeAmount, p.NativeToPointsRatio)
	if err != nil {
		return 0, err
	}
	scaled, err = checkedMul(scaled, decimalsMultiplier(p.TokenDecimals))
	if err != nil {
		return 0, err
	}
	return scaled / NativeUnits, nil
}
