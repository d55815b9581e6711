package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Users() UserRepository
	Catalog() CatalogRepository
	Wallets() WalletRepository
	WalletTransactions() WalletTransactionRepository
	Carts() CartRepository
	CartItems() CartItemRepository
	Orders() OrderRepository
	WalletGroups() WalletGroupRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// 直列化失敗・デッドロックは実装側が回数を決めてリトライする。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
