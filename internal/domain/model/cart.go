package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// カート。ユーザーにつき1件、StallIDの屋台の商品だけを入れられる。
type Cart struct {
	ID      string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  string `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	StallID string `gorm:"type:uuid;not null;index" json:"stall_id"`

	CreatedDatetime time.Time `gorm:"not null;autoCreateTime" json:"created_datetime"`
	UpdatedDatetime time.Time `gorm:"not null;autoUpdateTime" json:"updated_datetime"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
