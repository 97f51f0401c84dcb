package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AffiliateAccountModel struct {
	ID               string    `gorm:"type:uuid;primary_key" json:"id"`
	UserID           string    `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Code             string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	Status           string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	TotalEarnings    int64     `gorm:"default:0" json:"total_earnings"`
	TotalConversions int64     `gorm:"default:0" json:"total_conversions"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (AffiliateAccountModel) TableName() string {
	return "affiliate_accounts"
}

func (a *AffiliateAccountModel) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

type LegacyIdentityModel struct {
	ID         string    `gorm:"type:uuid;primary_key" json:"id"`
	ExternalID string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"external_id"`
	Email      string    `gorm:"type:varchar(255);not null;index" json:"email"`
	Name       string    `gorm:"type:varchar(255)" json:"name,omitempty"`
	ImportedAt time.Time `gorm:"not null" json:"imported_at"`
}

func (LegacyIdentityModel) TableName() string {
	return "legacy_identities"
}

func (l *LegacyIdentityModel) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

type UserModel struct {
	ID           string    `gorm:"type:uuid;primary_key" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name         string    `gorm:"type:varchar(255)" json:"name,omitempty"`
	PasswordHash string    `gorm:"type:varchar(255)" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (UserModel) TableName() string {
	return "users"
}

func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}
