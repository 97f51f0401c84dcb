package entity

import "time"

type SaleSource string

const (
	SaleSourceCheckout SaleSource = "checkout"
	SaleSourceImport   SaleSource = "import"
)

// AttributionState is processing metadata kept next to the sale fact. The
// sale itself is immutable once settled; this field only records where the
// sale sits in the attribution pipeline.
type AttributionState string

const (
	AttributionStateUnprocessed    AttributionState = "unprocessed"
	AttributionStateAttributed     AttributionState = "attributed"
	AttributionStateNoAffiliate    AttributionState = "no_affiliate"
	AttributionStateUnattributable AttributionState = "unattributable"
)

type Sale struct {
	ID           string           `json:"id"`
	Amount       int64            `json:"amount"`
	ProductID    string           `json:"product_id"`
	BuyerID      string           `json:"buyer_id"`
	AffiliateRef string           `json:"affiliate_ref,omitempty"`
	SettledAt    time.Time        `json:"settled_at"`
	Source       SaleSource       `json:"source"`
	Voided       bool             `json:"voided"`
	Attribution  AttributionState `json:"attribution"`
	// AttributionReason holds the unattributable reason code when
	// Attribution == unattributable, for the manual review queue.
	AttributionReason string    `json:"attribution_reason,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
