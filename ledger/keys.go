package ledger

const keyPrefix = "ledger/"

func platformKey() []byte {
	return []byte(keyPrefix + "platform")
}

func merchantKey(addr Address) []byte {
	return append([]byte(keyPrefix+"merchant/"), addr[:]...)
}

func merchantIndexKey() []byte {
	return []byte(keyPrefix + "merchant-index")
}

func balanceKey(addr Address) []byte {
	return append([]byte(keyPrefix+"balance/"), addr[:]...)
}

func nativeBalanceKey(addr Address) []byte {
	return append([]byte(keyPrefix+"native/"), addr[:]...)
}

func purchaseKey(customer Address, product ProductID) []byte {
	key := append([]byte(keyPrefix+"purchase/"), customer[:]...)
	return append(key, product[:]...)
}
