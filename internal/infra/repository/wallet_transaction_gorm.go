package repository

import (
	"context"

	"foodcourt/internal/domain/model"

	"gorm.io/gorm"
)

type WalletTransactionGormRepository struct {
	db *gorm.DB
}

func NewWalletTransactionGormRepository(db *gorm.DB) *WalletTransactionGormRepository {
	return &WalletTransactionGormRepository{db: db}
}

func (r *WalletTransactionGormRepository) Create(ctx context.Context, txn model.WalletTransaction) error {
	return r.db.WithContext(ctx).Create(&txn).Error
}

// 新しい順。
func (r *WalletTransactionGormRepository) ListByUserID(ctx context.Context, userID string) ([]model.WalletTransaction, error) {
	var txns []model.WalletTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_datetime desc").
		Find(&txns).Error
	if err != nil {
		return []model.WalletTransaction{}, err
	}
	return txns, nil
}
