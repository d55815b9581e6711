package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 屋台（ベンダー単位）。カートは1つの屋台の商品しか持てない。
type Stall struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	ImageURL    string `gorm:"type:varchar(512)" json:"image_url"`
	BuildingID  string `gorm:"type:uuid;not null;index" json:"building_id"`

	CreatedDatetime time.Time `gorm:"not null;autoCreateTime" json:"created_datetime"`
	UpdatedDatetime time.Time `gorm:"not null;autoUpdateTime" json:"updated_datetime"`
}

func (s *Stall) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
