package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// グループのメンバー。作成時点のユーザー情報を電話番号付きで持つ。
// 同じグループに同じ電話番号は入れない。
type WalletGroupMember struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID     string `gorm:"type:uuid;not null;index:idx_group_phone,unique" json:"group_id"`
	UserID      string `gorm:"type:uuid;not null;index" json:"user_id"`
	PhoneNumber string `gorm:"type:varchar(30);not null;index:idx_group_phone,unique" json:"phone_number"`
	Email       string `gorm:"type:varchar(255);not null" json:"email"`

	CreatedDatetime time.Time `gorm:"not null;autoCreateTime" json:"created_datetime"`
}

func (m *WalletGroupMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
