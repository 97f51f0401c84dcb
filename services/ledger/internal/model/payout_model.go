package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PayoutModel struct {
	ID          string     `gorm:"type:uuid;primary_key" json:"id"`
	WalletID    string     `gorm:"type:uuid;not null;index" json:"wallet_id"`
	UserID      string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount      int64      `gorm:"not null" json:"amount"`
	Status      string     `gorm:"type:varchar(20);not null;index" json:"status"`
	RequestedAt time.Time  `gorm:"not null" json:"requested_at"`
	SettledAt   *time.Time `json:"settled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (PayoutModel) TableName() string {
	return "payouts"
}

func (p *PayoutModel) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
