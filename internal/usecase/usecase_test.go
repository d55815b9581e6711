package usecase

import (
	"context"
	"testing"
	"time"

	"foodcourt/internal/domain/model"
	repo "foodcourt/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// テスト共通部品
// =====================

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

func assertErrContains(t *testing.T, err error, substr string) {
	t.Helper()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), substr)
}

// =====================
// Mocks
// =====================

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) FindByID(ctx context.Context, userID string) (model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByPhoneNumber(ctx context.Context, phone string) (model.User, error) {
	args := m.Called(ctx, phone)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByIdentifier(ctx context.Context, identifier string) (model.User, error) {
	args := m.Called(ctx, identifier)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) ListByPhoneNumbers(ctx context.Context, phones []string) ([]model.User, error) {
	args := m.Called(ctx, phones)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *UserRepoMock) SaveOTP(ctx context.Context, userID string, otpHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, otpHash, expiresAt)
	return args.Error(0)
}

func (m *UserRepoMock) ClearOTP(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type CatalogRepoMock struct{ mock.Mock }

func (m *CatalogRepoMock) FindItemByID(ctx context.Context, itemID string) (model.Item, error) {
	args := m.Called(ctx, itemID)
	item, _ := args.Get(0).(model.Item)
	return item, args.Error(1)
}

func (m *CatalogRepoMock) FindStallByID(ctx context.Context, stallID string) (model.Stall, error) {
	args := m.Called(ctx, stallID)
	s, _ := args.Get(0).(model.Stall)
	return s, args.Error(1)
}

type WalletRepoMock struct{ mock.Mock }

func (m *WalletRepoMock) FindByUserID(ctx context.Context, userID string) (model.Wallet, error) {
	args := m.Called(ctx, userID)
	w, _ := args.Get(0).(model.Wallet)
	return w, args.Error(1)
}

func (m *WalletRepoMock) FindByUserIDForUpdate(ctx context.Context, userID string) (model.Wallet, error) {
	args := m.Called(ctx, userID)
	w, _ := args.Get(0).(model.Wallet)
	return w, args.Error(1)
}

func (m *WalletRepoMock) Create(ctx context.Context, wallet model.Wallet) (model.Wallet, error) {
	args := m.Called(ctx, wallet)
	w, _ := args.Get(0).(model.Wallet)
	return w, args.Error(1)
}

func (m *WalletRepoMock) Save(ctx context.Context, wallet model.Wallet) error {
	args := m.Called(ctx, wallet)
	return args.Error(0)
}

func (m *WalletRepoMock) ListByBuildingID(ctx context.Context, buildingID string) ([]model.Wallet, error) {
	args := m.Called(ctx, buildingID)
	ws, _ := args.Get(0).([]model.Wallet)
	return ws, args.Error(1)
}

func (m *WalletRepoMock) ListByUserIDs(ctx context.Context, userIDs []string) ([]model.Wallet, error) {
	args := m.Called(ctx, userIDs)
	ws, _ := args.Get(0).([]model.Wallet)
	return ws, args.Error(1)
}

type WalletTxnRepoMock struct{ mock.Mock }

func (m *WalletTxnRepoMock) Create(ctx context.Context, txn model.WalletTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *WalletTxnRepoMock) ListByUserID(ctx context.Context, userID string) ([]model.WalletTransaction, error) {
	args := m.Called(ctx, userID)
	txns, _ := args.Get(0).([]model.WalletTransaction)
	return txns, args.Error(1)
}

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) FindByUserID(ctx context.Context, userID string) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) Create(ctx context.Context, cart model.Cart) (model.Cart, error) {
	args := m.Called(ctx, cart)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) DeleteByID(ctx context.Context, cartID string) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByCartID(ctx context.Context, cartID string) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) FindByCartAndItem(ctx context.Context, cartID string, itemID string) (model.CartItem, error) {
	args := m.Called(ctx, cartID, itemID)
	item, _ := args.Get(0).(model.CartItem)
	return item, args.Error(1)
}

func (m *CartItemRepoMock) Create(ctx context.Context, item model.CartItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *CartItemRepoMock) UpdateQuantity(ctx context.Context, cartItemID string, qty int64) error {
	args := m.Called(ctx, cartItemID, qty)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteByID(ctx context.Context, cartItemID string) error {
	args := m.Called(ctx, cartItemID)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteByCartID(ctx context.Context, cartID string) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (model.Order, error) {
	args := m.Called(ctx, order)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID string) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	os, _ := args.Get(0).([]model.Order)
	return os, args.Error(1)
}

func (m *OrderRepoMock) NextTokenNumber(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type WalletGroupRepoMock struct{ mock.Mock }

func (m *WalletGroupRepoMock) Create(ctx context.Context, group model.WalletGroup) (model.WalletGroup, error) {
	args := m.Called(ctx, group)
	g, _ := args.Get(0).(model.WalletGroup)
	return g, args.Error(1)
}

func (m *WalletGroupRepoMock) FindByID(ctx context.Context, groupID string) (model.WalletGroup, error) {
	args := m.Called(ctx, groupID)
	g, _ := args.Get(0).(model.WalletGroup)
	return g, args.Error(1)
}

func (m *WalletGroupRepoMock) Save(ctx context.Context, group model.WalletGroup) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *WalletGroupRepoMock) ListMembers(ctx context.Context, groupID string) ([]model.WalletGroupMember, error) {
	args := m.Called(ctx, groupID)
	members, _ := args.Get(0).([]model.WalletGroupMember)
	return members, args.Error(1)
}

func (m *WalletGroupRepoMock) AddMember(ctx context.Context, member model.WalletGroupMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *WalletGroupRepoMock) MemberExistsByPhone(ctx context.Context, groupID string, phone string) (bool, error) {
	args := m.Called(ctx, groupID, phone)
	return args.Bool(0), args.Error(1)
}

func (m *WalletGroupRepoMock) RemoveMemberByPhone(ctx context.Context, groupID string, phone string) error {
	args := m.Called(ctx, groupID, phone)
	return args.Error(0)
}

// =====================
// TxRepos / TransactionManager
// =====================

// 全repoのmockを束ねてTxReposとして渡す。
type txReposMock struct {
	users        *UserRepoMock
	catalog      *CatalogRepoMock
	wallets      *WalletRepoMock
	walletTxns   *WalletTxnRepoMock
	carts        *CartRepoMock
	cartItems    *CartItemRepoMock
	orders       *OrderRepoMock
	walletGroups *WalletGroupRepoMock
}

func newTxReposMock() *txReposMock {
	return &txReposMock{
		users:        new(UserRepoMock),
		catalog:      new(CatalogRepoMock),
		wallets:      new(WalletRepoMock),
		walletTxns:   new(WalletTxnRepoMock),
		carts:        new(CartRepoMock),
		cartItems:    new(CartItemRepoMock),
		orders:       new(OrderRepoMock),
		walletGroups: new(WalletGroupRepoMock),
	}
}

func (r *txReposMock) Users() repo.UserRepository { return r.users }
func (r *txReposMock) Catalog() repo.CatalogRepository { return r.catalog }
func (r *txReposMock) Wallets() repo.WalletRepository { return r.wallets }
func (r *txReposMock) WalletTransactions() repo.WalletTransactionRepository { return r.walletTxns }
func (r *txReposMock) Carts() repo.CartRepository { return r.carts }
func (r *txReposMock) CartItems() repo.CartItemRepository { return r.cartItems }
func (r *txReposMock) Orders() repo.OrderRepository { return r.orders }
func (r *txReposMock) WalletGroups() repo.WalletGroupRepository { return r.walletGroups }

// commit/rollbackはしない。クロージャを固定のmock一式で実行するだけ。
type txManagerMock struct {
	repos *txReposMock
}

func newTxManagerMock(repos *txReposMock) *txManagerMock {
	return &txManagerMock{repos: repos}
}

func (m *txManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(m.repos)
}
