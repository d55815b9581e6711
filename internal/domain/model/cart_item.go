package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// カート明細。PriceAtAdditionは追加時点の価格スナップショット（表示用）。
// 注文確定時の価格はカタログから取り直す。
type CartItem struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	CartID   string `gorm:"type:uuid;not null;index" json:"cart_id"`
	ItemID   string `gorm:"type:uuid;not null;index" json:"item_id"`
	Quantity int64  `gorm:"not null;default:1" json:"quantity"`

	PriceAtAddition decimal.Decimal `gorm:"type:numeric(12,2)" json:"price_at_addition"`

	CreatedDatetime time.Time `gorm:"not null;autoCreateTime" json:"created_datetime"`
	UpdatedDatetime time.Time `gorm:"not null;autoUpdateTime" json:"updated_datetime"`
}

func (ci *CartItem) BeforeCreate(tx *gorm.DB) error {
	if ci.ID == "" {
		ci.ID = uuid.NewString()
	}
	return nil
}
