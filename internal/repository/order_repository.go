package repository

import (
	"context"

	"foodcourt/internal/domain/model"
)

type OrderRepository interface {
	Create(ctx context.Context, order model.Order) (model.Order, error)
	FindByID(ctx context.Context, orderID string) (model.Order, error)

	// 新しい順。
	ListByUserID(ctx context.Context, userID string) ([]model.Order, error)

	// トークン番号を採番する。カウンター行をロックするので
	// 同時に呼んでも同じ番号は返らない。
	NextTokenNumber(ctx context.Context) (int64, error)
}
