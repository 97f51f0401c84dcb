package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SaleModel struct {
	ID                string    `gorm:"type:varchar(64);primary_key" json:"id"`
	Amount            int64     `gorm:"not null" json:"amount"`
	ProductID         string    `gorm:"type:varchar(64);not null;index" json:"product_id"`
	BuyerID           string    `gorm:"type:varchar(64);index" json:"buyer_id"`
	AffiliateRef      string    `gorm:"type:varchar(128);index" json:"affiliate_ref,omitempty"`
	SettledAt         time.Time `gorm:"not null;index" json:"settled_at"`
	Source            string    `gorm:"type:varchar(20);not null" json:"source"`
	Voided            bool      `gorm:"default:false" json:"voided"`
	Attribution       string    `gorm:"type:varchar(20);not null;default:'unprocessed';index" json:"attribution"`
	AttributionReason string    `gorm:"type:varchar(40)" json:"attribution_reason,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

func (SaleModel) TableName() string {
	return "sales"
}

func (s *SaleModel) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
