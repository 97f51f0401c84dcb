package usecase

import (
	"fmt"
	"strings"
	"time"

	"eksporyuk-ledger/services/ledger/internal/entity"
	"eksporyuk-ledger/services/ledger/internal/repo/persistent"
)

// AttributionResolver maps a sale's raw affiliate reference to exactly one
// affiliate account, or reports why it cannot. Resolution order: internal
// affiliate code, then legacy external id through the imported identity map
// (external id -> legacy email -> current user -> affiliate profile).
// Absence never falls back to a house account.
//
// asOf caps the identity map at a snapshot. Callers pass the processing
// time, never the sale's settlement time: the map is append-only, so any
// identity known at processing is valid for a sale settled earlier.
type AttributionResolver interface {
	Resolve(rawRef string, asOf time.Time) (*entity.AffiliateAccount, *entity.Unattributable, error)
}

type attributionResolver struct {
	affiliateRepo persistent.AffiliateRepository
}

func NewAttributionResolver(affiliateRepo persistent.AffiliateRepository) AttributionResolver {
	return &attributionResolver{affiliateRepo: affiliateRepo}
}

func (r *attributionResolver) Resolve(rawRef string, asOf time.Time) (*entity.AffiliateAccount, *entity.Unattributable, error) {
	ref := strings.TrimSpace(rawRef)
	if ref == "" || ref == "0" {
		return nil, &entity.Unattributable{Reason: entity.ReasonNoRef, RawRef: rawRef}, nil
	}

	// 1. Direct match on internal affiliate code.
	account, err := r.affiliateRepo.GetByCode(ref)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up affiliate code: %w", err)
	}
	if account != nil {
		return account, nil, nil
	}

	// 2. Legacy external id through the point-in-time identity map.
	identity, err := r.affiliateRepo.GetLegacyIdentity(ref, asOf)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up legacy identity: %w", err)
	}
	if identity == nil {
		return nil, &entity.Unattributable{Reason: entity.ReasonExternalUserNotFound, RawRef: rawRef}, nil
	}

	user, err := r.affiliateRepo.GetUserByEmail(identity.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up user by email: %w", err)
	}
	if user == nil {
		return nil, &entity.Unattributable{Reason: entity.ReasonEmailNotInCurrentSystem, RawRef: rawRef}, nil
	}

	account, err = r.affiliateRepo.GetByUserID(user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up affiliate profile: %w", err)
	}
	if account == nil {
		return nil, &entity.Unattributable{Reason: entity.ReasonNoAffiliateProfile, RawRef: rawRef}, nil
	}

	return account, nil, nil
}
