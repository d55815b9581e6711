package usecase

import (
	"context"
	"errors"
	"net/http"

	"foodcourt/internal/domain/model"
	repo "foodcourt/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase はカートの業務ロジック。
// カートは1ユーザー1つで、同じ屋台の商品しか入らない。
type CartUsecase struct {
	tx repo.TransactionManager
}

func NewCartUsecase(tx repo.TransactionManager) *CartUsecase {
	return &CartUsecase{tx: tx}
}

type CartItemResponse struct {
	ID       string          `json:"id"`
	ItemID   string          `json:"item_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}

type CartResponse struct {
	ID      string             `json:"id"`
	UserID  string             `json:"user_id"`
	StallID string             `json:"stall_id"`
	Items   []CartItemResponse `json:"items"`
	Total   decimal.Decimal    `json:"total"`
}

type AddCartInput struct {
	ItemID   string
	Quantity int64
}

// AddItem は1商品の追加。カートが無ければその商品の屋台で作る。
func (u *CartUsecase) AddItem(ctx context.Context, userID string, in AddCartInput) (CartResponse, error) {
	return u.AddItems(ctx, userID, []AddCartInput{in})
}

// AddItems はまとめて追加。全商品がカートの屋台と一致しなければ
// 1件も追加せずに失敗する。
func (u *CartUsecase) AddItems(ctx context.Context, userID string, inputs []AddCartInput) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if len(inputs) == 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "no items provided")
	}
	for _, in := range inputs {
		if in.ItemID == "" {
			return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid item_id")
		}
		if in.Quantity < 1 {
			return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
		}
	}

	var out CartResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 先に全商品を解決して屋台を確定する。途中で失敗したら何も書かない。
		items := make([]model.Item, 0, len(inputs))
		for _, in := range inputs {
			item, err := r.Catalog().FindItemByID(ctx, in.ItemID)
			if err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return NewHTTPError(http.StatusNotFound, "item not found")
				}
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			items = append(items, item)
		}

		stallID := items[0].StallID
		for _, item := range items {
			if item.StallID != stallID {
				return NewHTTPError(http.StatusBadRequest, "items must be from a single stall")
			}
		}

		cart, err := r.Carts().FindByUserID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			cart, err = r.Carts().Create(ctx, model.Cart{UserID: userID, StallID: stallID})
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		} else if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		} else if cart.StallID != stallID {
			// 既存カートは別の屋台。状態は変えない。
			return NewHTTPError(http.StatusBadRequest, "items must be from a single stall")
		}

		for i, in := range inputs {
			item := items[i]

			line, err := r.CartItems().FindByCartAndItem(ctx, cart.ID, item.ID)
			if err == nil {
				if err := r.CartItems().UpdateQuantity(ctx, line.ID, line.Quantity+in.Quantity); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				continue
			}
			if !errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			// 新規明細は追加時点の販売価格を控えておく（表示用）。
			if err := r.CartItems().Create(ctx, model.CartItem{
				CartID:          cart.ID,
				ItemID:          item.ID,
				Quantity:        in.Quantity,
				PriceAtAddition: item.SellingPrice(),
			}); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		resp, err := buildCartResponse(ctx, r, cart)
		if err != nil {
			return err
		}
		out = resp
		return nil
	})

	if err != nil {
		return CartResponse{}, err
	}
	return out, nil
}

// UpdateQuantity は数量変更。0以下は削除扱い。
func (u *CartUsecase) UpdateQuantity(ctx context.Context, userID string, itemID string, newQty int64) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if itemID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid item_id")
	}

	var out CartResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "cart not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		line, err := r.CartItems().FindByCartAndItem(ctx, cart.ID, itemID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "item not found in cart")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if newQty <= 0 {
			if err := r.CartItems().DeleteByID(ctx, line.ID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		} else {
			if err := r.CartItems().UpdateQuantity(ctx, line.ID, newQty); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		resp, err := buildCartResponse(ctx, r, cart)
		if err != nil {
			return err
		}
		out = resp
		return nil
	})

	if err != nil {
		return CartResponse{}, err
	}
	return out, nil
}

// RemoveItem は明細の削除。
func (u *CartUsecase) RemoveItem(ctx context.Context, userID string, itemID string) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if itemID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid item_id")
	}

	var out CartResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "cart not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		line, err := r.CartItems().FindByCartAndItem(ctx, cart.ID, itemID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "item not found in cart")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.CartItems().DeleteByID(ctx, line.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		resp, err := buildCartResponse(ctx, r, cart)
		if err != nil {
			return err
		}
		out = resp
		return nil
	})

	if err != nil {
		return CartResponse{}, err
	}
	return out, nil
}

// Clear は明細とカート本体の両方を消す。
func (u *CartUsecase) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "cart not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.CartItems().DeleteByCartID(ctx, cart.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Carts().DeleteByID(ctx, cart.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
}

// Get は現在のカートを返す。
func (u *CartUsecase) Get(ctx context.Context, userID string) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var out CartResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "cart not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		resp, err := buildCartResponse(ctx, r, cart)
		if err != nil {
			return err
		}
		out = resp
		return nil
	})

	if err != nil {
		return CartResponse{}, err
	}
	return out, nil
}

// 明細をまとめてCartResponseを作る。価格は追加時点のスナップショットを返す。
func buildCartResponse(ctx context.Context, r repo.TxRepos, cart model.Cart) (CartResponse, error) {
	lines, err := r.CartItems().ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respItems := make([]CartItemResponse, 0, len(lines))
	total := decimal.Zero

	for _, line := range lines {
		name := ""
		if item, err := r.Catalog().FindItemByID(ctx, line.ItemID); err == nil {
			name = item.Name
		}

		respItems = append(respItems, CartItemResponse{
			ID:       line.ID,
			ItemID:   line.ItemID,
			Name:     name,
			Price:    line.PriceAtAddition,
			Quantity: line.Quantity,
		})

		total = total.Add(line.PriceAtAddition.Mul(decimal.NewFromInt(line.Quantity)))
	}

	return CartResponse{
		ID:      cart.ID,
		UserID:  cart.UserID,
		StallID: cart.StallID,
		Items:   respItems,
		Total:   total,
	}, nil
}
