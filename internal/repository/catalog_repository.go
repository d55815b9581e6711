package repository

import (
	"context"
	"errors"

	"foodcourt/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 商品カタログの読み取り窓口。管理側のCRUDはここでは扱わない。
type CatalogRepository interface {
	// 商品IDから商品を1件取得する。
	FindItemByID(ctx context.Context, itemID string) (model.Item, error)

	// 屋台IDから屋台を1件取得する。
	FindStallByID(ctx context.Context, stallID string) (model.Stall, error)
}
