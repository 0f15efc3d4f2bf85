package model

import "time"

// Product is the registry record for one tracked item. Everything except
// CurrentOwnerID is written once at creation and never modified; ownership
// changes only through TransferProduct.
type Product struct {
	ObjectType         string    `json:"objectType"` // "Product"
	ID                 uint64    `json:"id"`         // Sequential, 0-based, allocated from the product counter
	Name               string    `json:"name"`
	Origin             string    `json:"origin"`
	CreatedAt          time.Time `json:"createdAt"`
	OrganicCertified   bool      `json:"organicCertified"`
	FairTradeCertified bool      `json:"fairTradeCertified"`
	CurrentOwnerID     string    `json:"currentOwnerId"` // Full client identity of the current owner
}

// Checkpoint is one immutable custody/location entry in a product's journal.
type Checkpoint struct {
	Location    string    `json:"location"`
	Description string    `json:"description"`
	RecordedAt  time.Time `json:"recordedAt"`
}

// CheckpointJournal holds the append-only, insertion-ordered checkpoint
// sequence for one product. Entries are never reordered or pruned.
type CheckpointJournal struct {
	ObjectType string       `json:"objectType"` // "CheckpointJournal"
	ProductID  uint64       `json:"productId"`
	Entries    []Checkpoint `json:"entries"`
}
