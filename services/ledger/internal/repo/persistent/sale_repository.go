package persistent

import (
	"errors"

	"eksporyuk-ledger/services/ledger/internal/entity"
	"eksporyuk-ledger/services/ledger/internal/model"

	"gorm.io/gorm"
)

type SaleRepository interface {
	GetByID(id string) (*entity.Sale, error)
	// GetOrCreate records the sale fact once. The bool is true when the
	// row was created by this call; replays get the stored sale back.
	GetOrCreate(sale *entity.Sale) (*entity.Sale, bool, error)
	SetAttribution(saleID string, state entity.AttributionState, reason string) error
	SetVoided(saleID string) error
	ListUnattributed(limit, offset int) ([]*entity.Sale, error)
	ListForAudit(scope entity.AuditScope) ([]*entity.Sale, error)
}

type saleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) GetByID(id string) (*entity.Sale, error) {
	var saleModel model.SaleModel
	if err := r.db.Where("id = ?", id).First(&saleModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToSaleEntity(&saleModel), nil
}

func (r *saleRepository) GetOrCreate(sale *entity.Sale) (*entity.Sale, bool, error) {
	var existing model.SaleModel
	err := r.db.Where("id = ?", sale.ID).First(&existing).Error
	if err == nil {
		return ToSaleEntity(&existing), false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	saleModel := ToSaleModel(sale)
	if saleModel.Attribution == "" {
		saleModel.Attribution = string(entity.AttributionStateUnprocessed)
	}
	if err := r.db.Create(saleModel).Error; err != nil {
		if retryable(err) {
			// Lost a race against a concurrent recordSale for the
			// same id; the stored row is the sale.
			if ferr := r.db.Where("id = ?", sale.ID).First(&existing).Error; ferr == nil {
				return ToSaleEntity(&existing), false, nil
			}
		}
		return nil, false, err
	}
	return ToSaleEntity(saleModel), true, nil
}

func (r *saleRepository) SetAttribution(saleID string, state entity.AttributionState, reason string) error {
	return r.db.Model(&model.SaleModel{}).Where("id = ?", saleID).Updates(map[string]interface{}{
		"attribution":        string(state),
		"attribution_reason": reason,
	}).Error
}

func (r *saleRepository) SetVoided(saleID string) error {
	return r.db.Model(&model.SaleModel{}).Where("id = ?", saleID).Update("voided", true).Error
}

func (r *saleRepository) ListUnattributed(limit, offset int) ([]*entity.Sale, error) {
	var saleModels []model.SaleModel
	query := r.db.
		Where("attribution = ?", string(entity.AttributionStateUnattributable)).
		Where("voided = false").
		Order("settled_at ASC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&saleModels).Error; err != nil {
		return nil, err
	}

	sales := make([]*entity.Sale, len(saleModels))
	for i := range saleModels {
		sales[i] = ToSaleEntity(&saleModels[i])
	}
	return sales, nil
}

func (r *saleRepository) ListForAudit(scope entity.AuditScope) ([]*entity.Sale, error) {
	var saleModels []model.SaleModel
	query := r.db.Where("affiliate_ref <> ''").Where("voided = false")
	if scope.From != nil {
		query = query.Where("settled_at >= ?", *scope.From)
	}
	if scope.To != nil {
		query = query.Where("settled_at < ?", *scope.To)
	}
	if err := query.Order("settled_at ASC").Find(&saleModels).Error; err != nil {
		return nil, err
	}

	sales := make([]*entity.Sale, len(saleModels))
	for i := range saleModels {
		sales[i] = ToSaleEntity(&saleModels[i])
	}
	return sales, nil
}
