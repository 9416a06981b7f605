package model

import "time"

// Transaction types for the spawner ledger.
const (
	TransactionPurchase = "purchase"
	TransactionSale     = "sale"
	TransactionLoss     = "loss"
)

// SpawnerTransaction is a ledger entry recording a purchase, sale or loss
// of spawners. TotalPrice is computed by the caller (quantity times unit
// price when both are present), not by the store.
type SpawnerTransaction struct {
	ID           string     `json:"id"`
	Type         string     `json:"type"`
	SpawnerType  string     `json:"spawnerType"`
	Quantity     int        `json:"quantity"`
	PricePerUnit *float64   `json:"pricePerUnit,omitempty"`
	TotalPrice   *float64   `json:"totalPrice,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	Date         time.Time  `json:"date"`
	AccountID    *string    `json:"accountId,omitempty"`
}

// ValidTransactionType reports whether t is one of the known ledger types.
func ValidTransactionType(t string) bool {
	switch t {
	case TransactionPurchase, TransactionSale, TransactionLoss:
		return true
	}
	return false
}
