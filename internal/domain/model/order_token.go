package model

// 注文トークンの採番カウンター。1行だけ置き、行ロックで直列化する。
type OrderTokenCounter struct {
	ID        int64 `gorm:"primaryKey" json:"id"`
	LastValue int64 `gorm:"not null;default:0" json:"last_value"`
}

func (OrderTokenCounter) TableName() string {
	return "order_token_counters"
}
