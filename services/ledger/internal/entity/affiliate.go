package entity

import "time"

type AffiliateStatus string

const (
	AffiliateStatusPending  AffiliateStatus = "pending"
	AffiliateStatusApproved AffiliateStatus = "approved"
	AffiliateStatusDisabled AffiliateStatus = "disabled"
)

// AffiliateAccount earns commission. TotalEarnings and TotalConversions are
// a denormalized cache; the ledger is the source of truth and the audit
// engine never trusts these fields.
type AffiliateAccount struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	Code             string          `json:"code"`
	Status           AffiliateStatus `json:"status"`
	TotalEarnings    int64           `json:"total_earnings"`
	TotalConversions int64           `json:"total_conversions"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// LegacyIdentity maps a user id from the historical system to the email it
// was registered with. Rows are written once by the importer and never
// updated, which keeps attribution replay-deterministic.
type LegacyIdentity struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name,omitempty"`
	ImportedAt time.Time `json:"imported_at"`
}

// User is the slice of the platform user directory the ledger needs:
// enough to hop from a legacy email to a current account.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type UnattributableReason string

const (
	ReasonNoRef                   UnattributableReason = "NO_REF"
	ReasonExternalUserNotFound    UnattributableReason = "EXTERNAL_USER_NOT_FOUND"
	ReasonEmailNotInCurrentSystem UnattributableReason = "EMAIL_NOT_IN_CURRENT_SYSTEM"
	ReasonNoAffiliateProfile      UnattributableReason = "NO_AFFILIATE_PROFILE"
)

// Unattributable reports why a sale's affiliate reference could not be
// resolved. These sales queue for manual mapping; they are never defaulted
// to a house account.
type Unattributable struct {
	Reason UnattributableReason `json:"reason"`
	RawRef string               `json:"raw_ref"`
}
