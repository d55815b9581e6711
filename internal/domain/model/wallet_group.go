package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ウォレットグループ。1つの建物に紐づくユーザーの束で、一括入金の単位。
type WalletGroup struct {
	ID         string `gorm:"type:uuid;primaryKey" json:"id"`
	GroupName  string `gorm:"type:varchar(255);not null" json:"group_name"`
	BuildingID string `gorm:"type:uuid;not null;index" json:"building_id"`

	CreatedDatetime time.Time `gorm:"not null;autoCreateTime" json:"created_datetime"`
	UpdatedDatetime time.Time `gorm:"not null;autoUpdateTime" json:"updated_datetime"`
}

func (g *WalletGroup) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}
