package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ウォレットの入出金履歴。追記専用で、更新・削除はしない。
// Amountは符号付き（入金が正、注文での支払いが負）。
type WalletTransaction struct {
	ID       string  `gorm:"type:uuid;primaryKey" json:"id"`
	WalletID string  `gorm:"type:uuid;not null;index" json:"wallet_id"`
	UserID   string  `gorm:"type:uuid;not null;index" json:"user_id"`
	OrderID  *string `gorm:"type:uuid" json:"order_id"`

	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Description string          `gorm:"type:varchar(255)" json:"description"`

	CreatedDatetime time.Time `gorm:"not null;autoCreateTime" json:"created_datetime"`
}

func (t *WalletTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
