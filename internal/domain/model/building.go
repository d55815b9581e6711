package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 建物。ウォレットの入金コンテキストになる。
type Building struct {
	ID             string `gorm:"type:uuid;primaryKey" json:"id"`
	BuildingName   string `gorm:"type:varchar(255);not null" json:"building_name"`
	CityIdentifier string `gorm:"type:varchar(100);not null" json:"city_identifier"`

	CreatedDatetime time.Time `gorm:"not null;autoCreateTime" json:"created_datetime"`
	UpdatedDatetime time.Time `gorm:"not null;autoUpdateTime" json:"updated_datetime"`
}

func (b *Building) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
