package repository

import (
	"context"

	"foodcourt/internal/domain/model"
)

type CartRepository interface {
	FindByUserID(ctx context.Context, userID string) (model.Cart, error)
	Create(ctx context.Context, cart model.Cart) (model.Cart, error)

	// カート本体を削除する（明細は先に消しておく）。
	DeleteByID(ctx context.Context, cartID string) error
}
