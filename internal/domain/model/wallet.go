package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ウォレット。ユーザーにつき1件として扱う。
// WalletAmountは累計入金額（減らない）、BalanceAmountが使える残高。
type Wallet struct {
	ID         string  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	BuildingID *string `gorm:"type:uuid;index" json:"building_id"`

	WalletAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"wallet_amount"`
	BalanceAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"balance_amount"`

	// ExpiryAtがnilなら期限管理なし。
	ExpiryAt *time.Time `json:"expiry_at"`

	// trueなら期限が過ぎても没収しない。
	IsRetainable bool `gorm:"not null;default:false" json:"is_retainable"`

	CreatedDatetime time.Time `gorm:"not null;autoCreateTime" json:"created_datetime"`
	UpdatedDatetime time.Time `gorm:"not null;autoUpdateTime" json:"updated_datetime"`
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// 没収対象か（retainableでなく、期限が設定されていて、今がそれを過ぎている）。
func (w *Wallet) IsExpired(now time.Time) bool {
	return !w.IsRetainable && w.ExpiryAt != nil && now.After(*w.ExpiryAt)
}
