package persistent

import (
	"errors"
	"time"

	"eksporyuk-ledger/services/ledger/internal/entity"
	"eksporyuk-ledger/services/ledger/internal/model"

	"gorm.io/gorm"
)

// AffiliateRepository lookups return (nil, nil) on not-found: the
// attribution resolver turns absence into an Unattributable reason, not an
// error.
type AffiliateRepository interface {
	GetByID(id string) (*entity.AffiliateAccount, error)
	GetByCode(code string) (*entity.AffiliateAccount, error)
	GetByUserID(userID string) (*entity.AffiliateAccount, error)
	GetLegacyIdentity(externalID string, asOf time.Time) (*entity.LegacyIdentity, error)
	GetUserByEmail(email string) (*entity.User, error)
	Create(account *entity.AffiliateAccount) (*entity.AffiliateAccount, error)
}

type affiliateRepository struct {
	db *gorm.DB
}

func NewAffiliateRepository(db *gorm.DB) AffiliateRepository {
	return &affiliateRepository{db: db}
}

func (r *affiliateRepository) GetByID(id string) (*entity.AffiliateAccount, error) {
	var accountModel model.AffiliateAccountModel
	if err := r.db.Where("id = ?", id).First(&accountModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToAffiliateEntity(&accountModel), nil
}

func (r *affiliateRepository) GetByCode(code string) (*entity.AffiliateAccount, error) {
	var accountModel model.AffiliateAccountModel
	if err := r.db.Where("code = ?", code).First(&accountModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToAffiliateEntity(&accountModel), nil
}

func (r *affiliateRepository) GetByUserID(userID string) (*entity.AffiliateAccount, error) {
	var accountModel model.AffiliateAccountModel
	if err := r.db.Where("user_id = ?", userID).First(&accountModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToAffiliateEntity(&accountModel), nil
}

func (r *affiliateRepository) GetLegacyIdentity(externalID string, asOf time.Time) (*entity.LegacyIdentity, error) {
	var identityModel model.LegacyIdentityModel
	query := r.db.Where("external_id = ?", externalID)
	if !asOf.IsZero() {
		query = query.Where("imported_at <= ?", asOf)
	}
	if err := query.First(&identityModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToLegacyIdentityEntity(&identityModel), nil
}

func (r *affiliateRepository) GetUserByEmail(email string) (*entity.User, error) {
	var userModel model.UserModel
	if err := r.db.Where("lower(email) = lower(?)", email).First(&userModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToUserEntity(&userModel), nil
}

func (r *affiliateRepository) Create(account *entity.AffiliateAccount) (*entity.AffiliateAccount, error) {
	accountModel := model.AffiliateAccountModel{
		ID:     account.ID,
		UserID: account.UserID,
		Code:   account.Code,
		Status: string(account.Status),
	}
	if accountModel.Status == "" {
		accountModel.Status = string(entity.AffiliateStatusPending)
	}
	if err := r.db.Create(&accountModel).Error; err != nil {
		return nil, err
	}
	return ToAffiliateEntity(&accountModel), nil
}
