package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"foodcourt/internal/domain/model"
	repo "foodcourt/internal/repository"

	"github.com/shopspring/decimal"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 時刻はテストで差し替えるのでinterfaceで受ける。
type Clock interface {
	Now() time.Time
}

// WalletUsecase はウォレット残高のライフサイクル（入金・支払い・没収）を持つ。
type WalletUsecase struct {
	tx          repo.TransactionManager
	clock       Clock
	topUpWindow time.Duration
}

func NewWalletUsecase(tx repo.TransactionManager, clock Clock, topUpWindow time.Duration) *WalletUsecase {
	return &WalletUsecase{
		tx:          tx,
		clock:       clock,
		topUpWindow: topUpWindow,
	}
}

// APIに返すウォレットの形。
type WalletSnapshot struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	BuildingID    *string         `json:"building_id"`
	WalletAmount  decimal.Decimal `json:"wallet_amount"`
	BalanceAmount decimal.Decimal `json:"balance_amount"`
	ExpiryAt      *time.Time      `json:"expiry_at"`
	IsRetainable  bool            `json:"is_retainable"`
}

type WalletTransactionEntry struct {
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// 建物・グループ単位の一覧で使う、ユーザー情報付きのウォレット。
type WalletWithUser struct {
	WalletID      string          `json:"wallet_id"`
	UserID        string          `json:"user_id"`
	UserName      string          `json:"user_name"`
	PhoneNumber   string          `json:"phone_number"`
	Email         string          `json:"email"`
	WalletAmount  decimal.Decimal `json:"wallet_amount"`
	BalanceAmount decimal.Decimal `json:"balance_amount"`
	ExpiryAt      *time.Time      `json:"expiry_at"`
	IsRetainable  bool            `json:"is_retainable"`
}

func toWalletSnapshot(w model.Wallet) WalletSnapshot {
	return WalletSnapshot{
		ID:            w.ID,
		UserID:        w.UserID,
		BuildingID:    w.BuildingID,
		WalletAmount:  w.WalletAmount,
		BalanceAmount: w.BalanceAmount,
		ExpiryAt:      w.ExpiryAt,
		IsRetainable:  w.IsRetainable,
	}
}

// 期限切れで没収対象なら両方の金額をゼロにする。戻り値は没収したかどうか。
// 既にゼロでも同じ結果になる（冪等）。
func applyForfeiture(w *model.Wallet, now time.Time) bool {
	if !w.IsExpired(now) {
		return false
	}
	w.WalletAmount = decimal.Zero
	w.BalanceAmount = decimal.Zero
	return true
}

// 翌日0:00 UTC。identifier指定の入金はその日のうちだけ有効。
func midnightNextDayUTC(now time.Time) time.Time {
	tomorrow := now.UTC().AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, time.UTC)
}

// 入金の共通処理。ウォレットが無ければ作り、あれば没収を先に済ませてから加算する。
// 呼び出し側がトランザクション内であることを保証する。
func creditWallet(
	ctx context.Context,
	r repo.TxRepos,
	now time.Time,
	userID string,
	amount decimal.Decimal,
	buildingID *string,
	retainable bool,
	expiryAt *time.Time,
) (model.Wallet, error) {
	wallet, err := r.Wallets().FindByUserIDForUpdate(ctx, userID)

	if err == nil {
		applyForfeiture(&wallet, now)

		wallet.WalletAmount = wallet.WalletAmount.Add(amount)
		wallet.BalanceAmount = wallet.BalanceAmount.Add(amount)
		wallet.ExpiryAt = expiryAt
		wallet.IsRetainable = retainable
		if buildingID != nil {
			wallet.BuildingID = buildingID
		}

		if err := r.Wallets().Save(ctx, wallet); err != nil {
			return model.Wallet{}, err
		}
		return wallet, nil
	}

	if !errors.Is(err, repo.ErrNotFound) {
		return model.Wallet{}, err
	}

	created, err := r.Wallets().Create(ctx, model.Wallet{
		UserID:        userID,
		BuildingID:    buildingID,
		WalletAmount:  amount,
		BalanceAmount: amount,
		ExpiryAt:      expiryAt,
		IsRetainable:  retainable,
	})
	if err != nil {
		return model.Wallet{}, err
	}
	return created, nil
}

// TopUp は自分のウォレットへの直接入金。固定の短い有効期間が付く。
func (u *WalletUsecase) TopUp(ctx context.Context, userID string, amount decimal.Decimal, buildingID *string) (WalletSnapshot, error) {
	if userID == "" {
		return WalletSnapshot{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return WalletSnapshot{}, NewHTTPError(http.StatusBadRequest, "invalid amount")
	}

	var out WalletSnapshot

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Users().FindByID(ctx, userID); err != nil {
			if errors.Is(err, repo.ErrUserNotFound) {
				return NewHTTPError(http.StatusNotFound, "user not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		now := u.clock.Now()
		expiry := now.Add(u.topUpWindow)

		wallet, err := creditWallet(ctx, r, now, userID, amount, buildingID, false, &expiry)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.WalletTransactions().Create(ctx, model.WalletTransaction{
			WalletID:    wallet.ID,
			UserID:      userID,
			Amount:      amount,
			Description: "wallet top-up",
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toWalletSnapshot(wallet)
		return nil
	})

	if err != nil {
		return WalletSnapshot{}, err
	}
	return out, nil
}

// AddMoneyByIdentifier は電話番号またはメールを宛先にした入金（管理側の配布）。
// retainableでなければ翌日0:00 UTCで失効する。
func (u *WalletUsecase) AddMoneyByIdentifier(ctx context.Context, identifier string, amount decimal.Decimal, buildingID string, retainable bool) (WalletSnapshot, error) {
	if identifier == "" {
		return WalletSnapshot{}, NewHTTPError(http.StatusBadRequest, "identifier is required")
	}
	if buildingID == "" {
		return WalletSnapshot{}, NewHTTPError(http.StatusBadRequest, "building id is required")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return WalletSnapshot{}, NewHTTPError(http.StatusBadRequest, "invalid amount")
	}

	var out WalletSnapshot

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		user, err := r.Users().FindByIdentifier(ctx, identifier)
		if err != nil {
			if errors.Is(err, repo.ErrUserNotFound) {
				return NewHTTPError(http.StatusNotFound, "user not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		now := u.clock.Now()
		var expiry *time.Time
		if !retainable {
			t := midnightNextDayUTC(now)
			expiry = &t
		}

		wallet, err := creditWallet(ctx, r, now, user.ID, amount, &buildingID, retainable, expiry)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.WalletTransactions().Create(ctx, model.WalletTransaction{
			WalletID:    wallet.ID,
			UserID:      user.ID,
			Amount:      amount,
			Description: "wallet funding",
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toWalletSnapshot(wallet)
		return nil
	})

	if err != nil {
		return WalletSnapshot{}, err
	}
	return out, nil
}

// GetWallet は残高照会。期限切れならゼロ化を永続化してから返す。
// 没収は読み出しの副作用に隠さず、ここで明示的に行う。二度読んでも結果は同じ。
func (u *WalletUsecase) GetWallet(ctx context.Context, userID string) (WalletSnapshot, error) {
	if userID == "" {
		return WalletSnapshot{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var out WalletSnapshot

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		wallet, err := r.Wallets().FindByUserIDForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "wallet not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if applyForfeiture(&wallet, u.clock.Now()) {
			if err := r.Wallets().Save(ctx, wallet); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		out = toWalletSnapshot(wallet)
		return nil
	})

	if err != nil {
		return WalletSnapshot{}, err
	}
	return out, nil
}

// TransactionHistory は入金と注文支払いを混ぜた履歴を新しい順で返す。読み取りのみ。
func (u *WalletUsecase) TransactionHistory(ctx context.Context, userID string) ([]WalletTransactionEntry, error) {
	if userID == "" {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var entries []WalletTransactionEntry

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Users().FindByID(ctx, userID); err != nil {
			if errors.Is(err, repo.ErrUserNotFound) {
				return NewHTTPError(http.StatusNotFound, "user not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		txns, err := r.WalletTransactions().ListByUserID(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		entries = make([]WalletTransactionEntry, 0, len(txns))
		for _, t := range txns {
			entries = append(entries, WalletTransactionEntry{
				Date:   t.CreatedDatetime,
				Amount: t.Amount,
			})
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ListWalletsByBuilding は建物単位のウォレット一覧（配布画面用）。
func (u *WalletUsecase) ListWalletsByBuilding(ctx context.Context, buildingID string) ([]WalletWithUser, error) {
	if buildingID == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "building id is required")
	}

	var out []WalletWithUser

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		wallets, err := r.Wallets().ListByBuildingID(ctx, buildingID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(wallets) == 0 {
			return NewHTTPError(http.StatusNotFound, "no wallets found for this building")
		}

		out = make([]WalletWithUser, 0, len(wallets))
		for _, w := range wallets {
			user, err := r.Users().FindByID(ctx, w.UserID)
			if err != nil {
				if errors.Is(err, repo.ErrUserNotFound) {
					continue
				}
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out = append(out, WalletWithUser{
				WalletID:      w.ID,
				UserID:        w.UserID,
				UserName:      user.Name,
				PhoneNumber:   user.PhoneNumber,
				Email:         user.CompanyEmail,
				WalletAmount:  w.WalletAmount,
				BalanceAmount: w.BalanceAmount,
				ExpiryAt:      w.ExpiryAt,
				IsRetainable:  w.IsRetainable,
			})
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}
