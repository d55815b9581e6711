package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"foodcourt/internal/domain/model"
	repo "foodcourt/internal/repository"

	"github.com/shopspring/decimal"
)

// OrderUsecase は注文の確定と参照を持つ。
// 確定は「カタログ価格の解決→（任意で）ウォレット支払い→トークン採番→保存」を
// 1トランザクションで行い、途中で失敗したら何も残さない。
type OrderUsecase struct {
	tx    repo.TransactionManager
	clock Clock
}

func NewOrderUsecase(tx repo.TransactionManager, clock Clock) *OrderUsecase {
	return &OrderUsecase{tx: tx, clock: clock}
}

type OrderItemInput struct {
	ItemID   string
	Quantity int64
}

type PlaceOrderInput struct {
	Items         []OrderItemInput
	PayWithWallet bool
}

type OrderLineOutput struct {
	ItemID      string          `json:"item_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	Total       decimal.Decimal `json:"total"`

	// 参照APIでだけ埋まる（現在の屋台情報）。
	StallID       string `json:"stall_id,omitempty"`
	StallName     string `json:"stall_name,omitempty"`
	StallImageURL string `json:"stall_image_url,omitempty"`
}

type OrderOutput struct {
	ID             string            `json:"id"`
	UserID         string            `json:"user_id"`
	UserEmail      string            `json:"user_email"`
	UserPhone      string            `json:"user_phone"`
	OrderDetails   []OrderLineOutput `json:"order_details"`
	TotalAmount    decimal.Decimal   `json:"total_amount"`
	PaidWithWallet bool              `json:"paid_with_wallet"`
	TokenNumber    int64             `json:"token_number"`
	CreatedAt      time.Time         `json:"created_datetime"`
}

// PlaceOrder は注文を確定する。価格はカートのスナップショットではなく、
// 確定時点のカタログから取り直す。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID string, in PlaceOrderInput) (OrderOutput, error) {
	if userID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if len(in.Items) == 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "no items provided")
	}
	for _, it := range in.Items {
		if it.ItemID == "" {
			return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid item_id")
		}
		if it.Quantity < 1 {
			return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
		}
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		user, err := r.Users().FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repo.ErrUserNotFound) {
				return NewHTTPError(http.StatusNotFound, "user not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		lines := make(model.OrderLines, 0, len(in.Items))
		total := decimal.Zero

		for _, entry := range in.Items {
			item, err := r.Catalog().FindItemByID(ctx, entry.ItemID)
			if err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return NewHTTPError(http.StatusNotFound, "item not found")
				}
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			price := item.SellingPrice()
			lineTotal := price.Mul(decimal.NewFromInt(entry.Quantity))

			lines = append(lines, model.OrderLine{
				ItemID:      item.ID,
				Name:        item.Name,
				Description: item.Description,
				Price:       price,
				Quantity:    entry.Quantity,
				Total:       lineTotal,
			})
			total = total.Add(lineTotal)
		}

		// ウォレット支払い。残高不足なら注文自体を作らない。
		var wallet model.Wallet
		if in.PayWithWallet {
			wallet, err = r.Wallets().FindByUserIDForUpdate(ctx, userID)
			if err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return NewHTTPError(http.StatusBadRequest, "wallet not found")
				}
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			now := u.clock.Now()
			if applyForfeiture(&wallet, now) {
				if err := r.Wallets().Save(ctx, wallet); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}

			if wallet.BalanceAmount.LessThan(total) {
				return NewHTTPError(http.StatusBadRequest, "insufficient wallet balance")
			}

			// 支払いは残高からだけ引く。累計入金額は減らさない。
			wallet.BalanceAmount = wallet.BalanceAmount.Sub(total)
			if err := r.Wallets().Save(ctx, wallet); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		token, err := r.Orders().NextTokenNumber(ctx)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order, err := r.Orders().Create(ctx, model.Order{
			UserID:         user.ID,
			UserEmail:      user.CompanyEmail,
			UserPhone:      user.PhoneNumber,
			OrderDetails:   lines,
			TotalAmount:    total,
			PaidWithWallet: in.PayWithWallet,
			TokenNumber:    token,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if in.PayWithWallet {
			if err := r.WalletTransactions().Create(ctx, model.WalletTransaction{
				WalletID:    wallet.ID,
				UserID:      user.ID,
				OrderID:     &order.ID,
				Amount:      total.Neg(),
				Description: "order payment",
			}); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		out = toOrderOutput(order, nil)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// GetOrder は屋台情報を付けて1件返す。
// カタログから消えた商品の行は黙って落とす（エラーにはしない）。
func (u *OrderUsecase) GetOrder(ctx context.Context, orderID string) (OrderOutput, error) {
	if orderID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "order not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		enriched, err := enrichOrderLines(ctx, r, order.OrderDetails)
		if err != nil {
			return err
		}
		out = toOrderOutput(order, enriched)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// ListOrders はユーザーの注文を新しい順に、屋台情報付きで返す。
func (u *OrderUsecase) ListOrders(ctx context.Context, userID string) ([]OrderOutput, error) {
	if userID == "" {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListByUserID(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			enriched, err := enrichOrderLines(ctx, r, o.OrderDetails)
			if err != nil {
				return err
			}
			outs = append(outs, toOrderOutput(o, enriched))
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return outs, nil
}

// 保存済み明細に現在の屋台名・画像を付ける。商品が消えていたらその行は飛ばす。
func enrichOrderLines(ctx context.Context, r repo.TxRepos, lines model.OrderLines) ([]OrderLineOutput, error) {
	enriched := make([]OrderLineOutput, 0, len(lines))

	for _, line := range lines {
		item, err := r.Catalog().FindItemByID(ctx, line.ItemID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				continue
			}
			return nil, NewHTTPError(http.StatusInternalServerError, "db error")
		}

		stallName := "Unknown Stall"
		stallImage := ""
		if stall, err := r.Catalog().FindStallByID(ctx, item.StallID); err == nil {
			stallName = stall.Name
			stallImage = stall.ImageURL
		}

		enriched = append(enriched, OrderLineOutput{
			ItemID:        line.ItemID,
			Name:          line.Name,
			Description:   line.Description,
			Price:         line.Price,
			Quantity:      line.Quantity,
			Total:         line.Total,
			StallID:       item.StallID,
			StallName:     stallName,
			StallImageURL: stallImage,
		})
	}

	return enriched, nil
}

func toOrderOutput(o model.Order, enriched []OrderLineOutput) OrderOutput {
	details := enriched
	if details == nil {
		details = make([]OrderLineOutput, 0, len(o.OrderDetails))
		for _, line := range o.OrderDetails {
			details = append(details, OrderLineOutput{
				ItemID:      line.ItemID,
				Name:        line.Name,
				Description: line.Description,
				Price:       line.Price,
				Quantity:    line.Quantity,
				Total:       line.Total,
			})
		}
	}

	return OrderOutput{
		ID:             o.ID,
		UserID:         o.UserID,
		UserEmail:      o.UserEmail,
		UserPhone:      o.UserPhone,
		OrderDetails:   details,
		TotalAmount:    o.TotalAmount,
		PaidWithWallet: o.PaidWithWallet,
		TokenNumber:    o.TokenNumber,
		CreatedAt:      o.CreatedDatetime,
	}
}
