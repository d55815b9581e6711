package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 注文の1明細。確定時点のスナップショットで、以後変わらない。
type OrderLine struct {
	ItemID      string          `json:"item_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	Total       decimal.Decimal `json:"total"`
}

// 明細リスト。JSONカラムとして保存するが、型を決めて境界で検証する。
type OrderLines []OrderLine

func (l OrderLines) Value() (driver.Value, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(l)
}

func (l *OrderLines) Scan(src interface{}) error {
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("order lines: unsupported column type %T", src)
	}
	return json.Unmarshal(b, l)
}

// 永続化前のチェック。空明細や不正な数量はここで弾く。
func (l OrderLines) Validate() error {
	if len(l) == 0 {
		return errors.New("order lines: empty")
	}
	for _, line := range l {
		if line.ItemID == "" {
			return errors.New("order lines: missing item_id")
		}
		if line.Quantity < 1 {
			return fmt.Errorf("order lines: invalid quantity for item %s", line.ItemID)
		}
		if !line.Total.Equal(line.Price.Mul(decimal.NewFromInt(line.Quantity))) {
			return fmt.Errorf("order lines: total mismatch for item %s", line.ItemID)
		}
	}
	return nil
}

// 明細合計。
func (l OrderLines) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, line := range l {
		total = total.Add(line.Total)
	}
	return total
}

// 注文。作成後は不変。TokenNumberは表示・呼び出し用の連番で重複しない。
type Order struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string `gorm:"type:uuid;not null;index" json:"user_id"`
	UserEmail string `gorm:"type:varchar(255);not null" json:"user_email"`
	UserPhone string `gorm:"type:varchar(30);not null" json:"user_phone"`

	OrderDetails OrderLines      `gorm:"type:jsonb;not null" json:"order_details"`
	TotalAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`

	PaidWithWallet bool  `gorm:"not null;default:false" json:"paid_with_wallet"`
	TokenNumber    int64 `gorm:"not null;uniqueIndex" json:"token_number"`

	CreatedDatetime time.Time `gorm:"not null;autoCreateTime" json:"created_datetime"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
