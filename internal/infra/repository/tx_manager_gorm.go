package repository

import (
	"context"
	"errors"

	repo "foodcourt/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type txReposGorm struct {
	users        repo.UserRepository
	catalog      repo.CatalogRepository
	wallets      repo.WalletRepository
	walletTxns   repo.WalletTransactionRepository
	carts        repo.CartRepository
	cartItems    repo.CartItemRepository
	orders       repo.OrderRepository
	walletGroups repo.WalletGroupRepository
}

func (r *txReposGorm) Users() repo.UserRepository { return r.users }
func (r *txReposGorm) Catalog() repo.CatalogRepository { return r.catalog }
func (r *txReposGorm) Wallets() repo.WalletRepository { return r.wallets }
func (r *txReposGorm) WalletTransactions() repo.WalletTransactionRepository { return r.walletTxns }
func (r *txReposGorm) Carts() repo.CartRepository { return r.carts }
func (r *txReposGorm) CartItems() repo.CartItemRepository { return r.cartItems }
func (r *txReposGorm) Orders() repo.OrderRepository { return r.orders }
func (r *txReposGorm) WalletGroups() repo.WalletGroupRepository { return r.walletGroups }

// リトライ上限。直列化失敗とデッドロックだけやり直す。
const maxTxAttempts = 3

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			//repoはtxを持ったDBで作り直す
			r := &txReposGorm{
				users:        NewUserGormRepository(tx),
				catalog:      NewCatalogGormRepository(tx),
				wallets:      NewWalletGormRepository(tx),
				walletTxns:   NewWalletTransactionGormRepository(tx),
				carts:        NewCartGormRepository(tx),
				cartItems:    NewCartItemGormRepository(tx),
				orders:       NewOrderGormRepository(tx),
				walletGroups: NewWalletGroupGormRepository(tx),
			}
			return fn(r)
		})
		if !isRetryableTxError(err) {
			return err
		}
	}
	return err
}

// 40001=serialization_failure, 40P01=deadlock_detected
func isRetryableTxError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
