package persistent

import (
	"errors"

	"eksporyuk-ledger/services/ledger/internal/entity"
	"eksporyuk-ledger/services/ledger/internal/model"

	"gorm.io/gorm"
)

type WalletRepository interface {
	GetOrCreateByUserID(userID string) (*entity.Wallet, error)
	GetByUserID(userID string) (*entity.Wallet, error)
	GetByID(id string) (*entity.Wallet, error)
	SetHold(walletID string, held bool) error
	ListTransactions(walletID string, limit, offset int) ([]*entity.WalletTransaction, error)
}

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) GetOrCreateByUserID(userID string) (*entity.Wallet, error) {
	var walletModel model.WalletModel
	if err := r.db.Where("user_id = ?", userID).First(&walletModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			walletModel = model.WalletModel{UserID: userID}
			if err := r.db.Create(&walletModel).Error; err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	}
	return ToWalletEntity(&walletModel), nil
}

func (r *walletRepository) GetByUserID(userID string) (*entity.Wallet, error) {
	var walletModel model.WalletModel
	if err := r.db.Where("user_id = ?", userID).First(&walletModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToWalletEntity(&walletModel), nil
}

func (r *walletRepository) GetByID(id string) (*entity.Wallet, error) {
	var walletModel model.WalletModel
	if err := r.db.Where("id = ?", id).First(&walletModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToWalletEntity(&walletModel), nil
}

func (r *walletRepository) SetHold(walletID string, held bool) error {
	return r.db.Model(&model.WalletModel{}).Where("id = ?", walletID).Update("held", held).Error
}

func (r *walletRepository) ListTransactions(walletID string, limit, offset int) ([]*entity.WalletTransaction, error) {
	var txModels []model.WalletTransactionModel
	query := r.db.Where("wallet_id = ?", walletID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&txModels).Error; err != nil {
		return nil, err
	}

	transactions := make([]*entity.WalletTransaction, len(txModels))
	for i := range txModels {
		transactions[i] = ToWalletTransactionEntity(&txModels[i])
	}
	return transactions, nil
}
