package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// フードコート利用者。OTPログインのみ（パスワードは持たない）。
type User struct {
	ID           string `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string `gorm:"type:varchar(255);not null" json:"name"`
	CompanyName  string `gorm:"type:varchar(255);not null" json:"company_name"`
	CompanyEmail string `gorm:"type:varchar(255);uniqueIndex;not null" json:"company_email"`
	PhoneNumber  string `gorm:"type:varchar(30);uniqueIndex;not null" json:"phone_number"`

	// 直近に発行したOTPのbcryptハッシュ。平文は保存しない。
	OTPHash      *string    `gorm:"type:varchar(255)" json:"-"`
	OTPExpiresAt *time.Time `json:"-"`

	CreatedDatetime time.Time `gorm:"not null;autoCreateTime" json:"created_datetime"`
	UpdatedDatetime time.Time `gorm:"not null;autoUpdateTime" json:"updated_datetime"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
