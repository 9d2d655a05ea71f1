package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Operation is one row per ledger event. Addresses are stored in their
// bech32 form so the API can be queried with the same strings clients use.
type Operation struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EventType    string    `gorm:"size:64;index" json:"eventType"`
	Actor        string    `gorm:"size:90;index" json:"actor"`
	Counterparty string    `gorm:"size:90;index" json:"counterparty,omitempty"`
	ProductID    string    `gorm:"size:64" json:"productId,omitempty"`
	Reference    string    `gorm:"size:64" json:"reference,omitempty"`
	Amount       string    `gorm:"size:24" json:"amount,omitempty"`
	FeePaid      string    `gorm:"size:24" json:"feePaid,omitempty"`
	LedgerTime   uint64    `gorm:"index" json:"ledgerTime,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AutoMigrate creates or updates the audit schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Operation{})
}
