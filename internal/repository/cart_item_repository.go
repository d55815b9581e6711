package repository

import (
	"context"

	"foodcourt/internal/domain/model"
)

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID string) ([]model.CartItem, error)
	FindByCartAndItem(ctx context.Context, cartID string, itemID string) (model.CartItem, error)
	Create(ctx context.Context, item model.CartItem) error
	UpdateQuantity(ctx context.Context, cartItemID string, qty int64) error
	DeleteByID(ctx context.Context, cartItemID string) error
	DeleteByCartID(ctx context.Context, cartID string) error
}
