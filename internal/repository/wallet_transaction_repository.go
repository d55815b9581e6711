package repository

import (
	"context"

	"foodcourt/internal/domain/model"
)

// 入出金履歴。追記と新しい順の一覧のみ。
type WalletTransactionRepository interface {
	Create(ctx context.Context, txn model.WalletTransaction) error
	ListByUserID(ctx context.Context, userID string) ([]model.WalletTransaction, error)
}
