package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 商品。FinalPriceが税込の販売価格（未設定ならPriceを使う）。
type Item struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	ImageURL    string `gorm:"type:varchar(512)" json:"image_url"`

	Price         decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"price"`
	TaxIncluded   bool             `gorm:"not null;default:false" json:"tax_included"`
	GSTPercentage *decimal.Decimal `gorm:"type:numeric(5,2)" json:"gst_percentage"`
	FinalPrice    *decimal.Decimal `gorm:"type:numeric(12,2)" json:"final_price"`

	IsAvailable bool `gorm:"not null;default:true" json:"is_available"`

	BuildingID string `gorm:"type:uuid;not null;index" json:"building_id"`
	StallID    string `gorm:"type:uuid;not null;index" json:"stall_id"`

	CreatedDatetime time.Time `gorm:"not null;autoCreateTime" json:"created_datetime"`
	UpdatedDatetime time.Time `gorm:"not null;autoUpdateTime" json:"updated_datetime"`
}

func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// 販売価格。final_priceがあればそれ、無ければprice。
func (i *Item) SellingPrice() decimal.Decimal {
	if i.FinalPrice != nil && !i.FinalPrice.IsZero() {
		return *i.FinalPrice
	}
	return i.Price
}
