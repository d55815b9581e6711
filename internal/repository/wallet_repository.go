package repository

import (
	"context"

	"foodcourt/internal/domain/model"
)

type WalletRepository interface {
	FindByUserID(ctx context.Context, userID string) (model.Wallet, error)

	// 行ロック付きで取得。入出金と没収はこれ経由でしか触らない。
	FindByUserIDForUpdate(ctx context.Context, userID string) (model.Wallet, error)

	Create(ctx context.Context, wallet model.Wallet) (model.Wallet, error)

	// 金額・期限・retainable・building_idをまとめて保存する。
	Save(ctx context.Context, wallet model.Wallet) error

	// 建物単位の一覧（入金画面用）。
	ListByBuildingID(ctx context.Context, buildingID string) ([]model.Wallet, error)

	// 複数ユーザー分をまとめて取得する。
	ListByUserIDs(ctx context.Context, userIDs []string) ([]model.Wallet, error)
}
