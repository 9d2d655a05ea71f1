package audit

import (
	"encoding/hex"
	"log/slog"
	"strconv"

	"pointchain/crypto"
	"pointchain/events"
	"pointchain/ledger"
)

// Recorder translates ledger events into audit rows. Persistence failures are
// logged rather than propagated so the ledger write path never blocks on the
// audit database.
type Recorder struct {
	store  *Store
	logger *slog.Logger
}

// NewRecorder creates an emitter that writes every event to the store.
func NewRecorder(store *Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: store, logger: logger}
}

func encodeIdentity(b [32]byte) string {
	return crypto.NewAddress(b[:]).String()
}

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// Emit implements events.Emitter.
func (r *Recorder) Emit(evt events.Event) {
	op := r.operationFor(evt)
	if op == nil {
		r.logger.Warn("audit: unmapped event type", "type", evt.EventType())
		return
	}
	if err := r.store.Record(op); err != nil {
		r.logger.Error("audit: record failed", "type", evt.EventType(), "error", err)
	}
}

func (r *Recorder) operationFor(evt events.Event) *Operation {
	switch e := evt.(type) {
	case events.PlatformInitialized:
		return &Operation{
			EventType:    e.EventType(),
			Actor:        encodeIdentity(e.Admin),
			Counterparty: encodeIdentity(e.Treasury),
			Amount:       formatUint(e.MaxSupply),
		}
	case events.PlatformActiveSet:
		active := "0"
		if e.Active {
			active = "1"
		}
		return &Operation{
			EventType: e.EventType(),
			Actor:     encodeIdentity(e.Caller),
			Amount:    active,
		}
	case events.MerchantRegistered:
		return &Operation{
			EventType:  e.EventType(),
			Actor:      encodeIdentity(e.Merchant),
			Amount:     formatUint(e.MintAllowance),
			LedgerTime: e.RegisteredAt,
		}
	case events.MerchantRevoked:
		return &Operation{
			EventType:  e.EventType(),
			Actor:      encodeIdentity(e.Merchant),
			LedgerTime: e.RevokedAt,
		}
	case events.PointsMinted:
		return &Operation{
			EventType:    e.EventType(),
			Actor:        encodeIdentity(e.Merchant),
			Counterparty: encodeIdentity(e.Consumer),
			Amount:       formatUint(e.Amount),
			FeePaid:      formatUint(e.FeePaid),
			Reference:    e.Reference,
			LedgerTime:   e.Timestamp,
		}
	case events.NativeDeposited:
		return &Operation{
			EventType:  e.EventType(),
			Actor:      encodeIdentity(e.Merchant),
			Amount:     formatUint(e.PointsMinted),
			FeePaid:    formatUint(e.NativeAmount),
			LedgerTime: e.Timestamp,
		}
	case events.NativeCredited:
		return &Operation{
			EventType: e.EventType(),
			Actor:     encodeIdentity(e.Account),
			Amount:    formatUint(e.Amount),
		}
	case events.PointsRedeemed:
		return &Operation{
			EventType:    e.EventType(),
			Actor:        encodeIdentity(e.Consumer),
			Counterparty: encodeIdentity(e.Merchant),
			Amount:       formatUint(e.Amount),
			Reference:    e.Reference,
			LedgerTime:   e.Timestamp,
		}
	case events.ProductPurchased:
		payment := "native"
		if e.PaymentType == uint8(ledger.PaymentPoints) {
			payment = "points"
		}
		return &Operation{
			EventType:    e.EventType(),
			Actor:        encodeIdentity(e.Customer),
			Counterparty: encodeIdentity(e.Merchant),
			ProductID:    hex.EncodeToString(e.ProductID[:]),
			Amount:       formatUint(e.AmountPaid),
			FeePaid:      formatUint(e.FeePaid),
			Reference:    payment,
			LedgerTime:   e.Timestamp,
		}
	default:
		return nil
	}
}
