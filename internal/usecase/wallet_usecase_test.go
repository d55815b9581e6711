package usecase

import (
	"context"
	"testing"
	"time"

	"foodcourt/internal/domain/model"
	repo "foodcourt/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newWalletUsecaseForTest(repos *txReposMock) *WalletUsecase {
	return NewWalletUsecase(newTxManagerMock(repos), &fixedClock{now: testNow}, 10*time.Minute)
}

// =====================
// 没収ヘルパ
// =====================

func TestApplyForfeiture_ZeroesExpiredWallet(t *testing.T) {
	expired := testNow.Add(-time.Minute)
	w := model.Wallet{
		WalletAmount:  decimal.NewFromInt(100),
		BalanceAmount: decimal.NewFromInt(40),
		ExpiryAt:      &expired,
		IsRetainable:  false,
	}

	assert.True(t, applyForfeiture(&w, testNow))
	assert.True(t, w.WalletAmount.IsZero())
	assert.True(t, w.BalanceAmount.IsZero())

	// 2回目も結果は同じ
	applyForfeiture(&w, testNow)
	assert.True(t, w.BalanceAmount.IsZero())
}

func TestApplyForfeiture_KeepsRetainableWallet(t *testing.T) {
	expired := testNow.Add(-time.Minute)
	w := model.Wallet{
		WalletAmount:  decimal.NewFromInt(100),
		BalanceAmount: decimal.NewFromInt(40),
		ExpiryAt:      &expired,
		IsRetainable:  true,
	}

	assert.False(t, applyForfeiture(&w, testNow))
	assert.True(t, w.BalanceAmount.Equal(decimal.NewFromInt(40)))
}

func TestApplyForfeiture_KeepsWalletWithoutExpiry(t *testing.T) {
	w := model.Wallet{
		WalletAmount:  decimal.NewFromInt(100),
		BalanceAmount: decimal.NewFromInt(40),
	}

	assert.False(t, applyForfeiture(&w, testNow))
	assert.True(t, w.WalletAmount.Equal(decimal.NewFromInt(100)))
}

func TestMidnightNextDayUTC(t *testing.T) {
	now := time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC)
	got := midnightNextDayUTC(now)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), got)
}

// =====================
// TopUp
// =====================

func TestWalletUsecase_TopUp_CreatesWalletWhenMissing(t *testing.T) {
	ctx := context.Background()
	repos := newTxReposMock()
	uc := newWalletUsecaseForTest(repos)

	repos.users.On("FindByID", mock.Anything, "u1").Return(model.User{ID: "u1"}, nil)
	repos.wallets.On("FindByUserIDForUpdate", mock.Anything, "u1").Return(model.Wallet{}, repo.ErrNotFound)

	wantExpiry := testNow.Add(10 * time.Minute)
	repos.wallets.On("Create", mock.Anything, mock.MatchedBy(func(w model.Wallet) bool {
		return w.UserID == "u1" &&
			w.WalletAmount.Equal(decimal.NewFromInt(100)) &&
			w.BalanceAmount.Equal(decimal.NewFromInt(100)) &&
			!w.IsRetainable &&
			w.ExpiryAt != nil && w.ExpiryAt.Equal(wantExpiry)
	})).Return(model.Wallet{ID: "w1", UserID: "u1", WalletAmount: decimal.NewFromInt(100), BalanceAmount: decimal.NewFromInt(100)}, nil)

	repos.walletTxns.On("Create", mock.Anything, mock.MatchedBy(func(txn model.WalletTransaction) bool {
		return txn.WalletID == "w1" && txn.UserID == "u1" &&
			txn.Amount.Equal(decimal.NewFromInt(100)) &&
			txn.Description == "wallet top-up"
	})).Return(nil)

	out, err := uc.TopUp(ctx, "u1", decimal.NewFromInt(100), nil)
	assert.NoError(t, err)
	assert.Equal(t, "w1", out.ID)
	assert.True(t, out.BalanceAmount.Equal(decimal.NewFromInt(100)))

	repos.wallets.AssertExpectations(t)
	repos.walletTxns.AssertExpectations(t)
}

func TestWalletUsecase_TopUp_ForfeitsExpiredBeforeCredit(t *testing.T) {
	ctx := context.Background()
	repos := newTxReposMock()
	uc := newWalletUsecaseForTest(repos)

	expired := testNow.Add(-time.Hour)
	repos.users.On("FindByID", mock.Anything, "u1").Return(model.User{ID: "u1"}, nil)
	repos.wallets.On("FindByUserIDForUpdate", mock.Anything, "u1").Return(model.Wallet{
		ID:            "w1",
		UserID:        "u1",
		WalletAmount:  decimal.NewFromInt(500),
		BalanceAmount: decimal.NewFromInt(200),
		ExpiryAt:      &expired,
		IsRetainable:  false,
	}, nil)

	// 旧残高はゼロ化されてから100だけ乗る
	repos.wallets.On("Save", mock.Anything, mock.MatchedBy(func(w model.Wallet) bool {
		return w.WalletAmount.Equal(decimal.NewFromInt(100)) &&
			w.BalanceAmount.Equal(decimal.NewFromInt(100))
	})).Return(nil)
	repos.walletTxns.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, err := uc.TopUp(ctx, "u1", decimal.NewFromInt(100), nil)
	assert.NoError(t, err)
	assert.True(t, out.WalletAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, out.BalanceAmount.Equal(decimal.NewFromInt(100)))

	repos.wallets.AssertExpectations(t)
}

func TestWalletUsecase_TopUp_RejectsNonPositiveAmount(t *testing.T) {
	repos := newTxReposMock()
	uc := newWalletUsecaseForTest(repos)

	_, err := uc.TopUp(context.Background(), "u1", decimal.Zero, nil)
	assertErrContains(t, err, "invalid amount")

	_, err = uc.TopUp(context.Background(), "u1", decimal.NewFromInt(-10), nil)
	assertErrContains(t, err, "invalid amount")
}

// =====================
// AddMoneyByIdentifier
// =====================

func TestWalletUsecase_AddMoneyByIdentifier_NonRetainableExpiresAtMidnight(t *testing.T) {
	ctx := context.Background()
	repos := newTxReposMock()
	uc := newWalletUsecaseForTest(repos)

	repos.users.On("FindByIdentifier", mock.Anything, "+6590000001").Return(model.User{ID: "u1", PhoneNumber: "+6590000001"}, nil)
	repos.wallets.On("FindByUserIDForUpdate", mock.Anything, "u1").Return(model.Wallet{}, repo.ErrNotFound)

	wantExpiry := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	repos.wallets.On("Create", mock.Anything, mock.MatchedBy(func(w model.Wallet) bool {
		return w.UserID == "u1" &&
			w.BuildingID != nil && *w.BuildingID == "b1" &&
			!w.IsRetainable &&
			w.ExpiryAt != nil && w.ExpiryAt.Equal(wantExpiry)
	})).Return(model.Wallet{ID: "w1", UserID: "u1"}, nil)
	repos.walletTxns.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := uc.AddMoneyByIdentifier(ctx, "+6590000001", decimal.NewFromInt(50), "b1", false)
	assert.NoError(t, err)

	repos.wallets.AssertExpectations(t)
}

func TestWalletUsecase_AddMoneyByIdentifier_RetainableHasNoExpiry(t *testing.T) {
	ctx := context.Background()
	repos := newTxReposMock()
	uc := newWalletUsecaseForTest(repos)

	repos.users.On("FindByIdentifier", mock.Anything, "user@example.com").Return(model.User{ID: "u1"}, nil)
	repos.wallets.On("FindByUserIDForUpdate", mock.Anything, "u1").Return(model.Wallet{}, repo.ErrNotFound)

	repos.wallets.On("Create", mock.Anything, mock.MatchedBy(func(w model.Wallet) bool {
		return w.IsRetainable && w.ExpiryAt == nil
	})).Return(model.Wallet{ID: "w1", UserID: "u1"}, nil)
	repos.walletTxns.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := uc.AddMoneyByIdentifier(ctx, "user@example.com", decimal.NewFromInt(50), "b1", true)
	assert.NoError(t, err)

	repos.wallets.AssertExpectations(t)
}

func TestWalletUsecase_AddMoneyByIdentifier_RequiresBuilding(t *testing.T) {
	repos := newTxReposMock()
	uc := newWalletUsecaseForTest(repos)

	_, err := uc.AddMoneyByIdentifier(context.Background(), "+6590000001", decimal.NewFromInt(50), "", false)
	assertErrContains(t, err, "building id is required")
}

func TestWalletUsecase_AddMoneyByIdentifier_UserNotFound(t *testing.T) {
	repos := newTxReposMock()
	uc := newWalletUsecaseForTest(repos)

	repos.users.On("FindByIdentifier", mock.Anything, "nobody").Return(model.User{}, repo.ErrUserNotFound)

	_, err := uc.AddMoneyByIdentifier(context.Background(), "nobody", decimal.NewFromInt(50), "b1", false)
	assertErrContains(t, err, "user not found")
}

// =====================
// GetWallet
// =====================

func TestWalletUsecase_GetWallet_PersistsForfeiture(t *testing.T) {
	ctx := context.Background()
	repos := newTxReposMock()
	uc := newWalletUsecaseForTest(repos)

	expired := testNow.Add(-time.Minute)
	repos.wallets.On("FindByUserIDForUpdate", mock.Anything, "u1").Return(model.Wallet{
		ID:            "w1",
		UserID:        "u1",
		WalletAmount:  decimal.NewFromInt(300),
		BalanceAmount: decimal.NewFromInt(120),
		ExpiryAt:      &expired,
	}, nil)
	repos.wallets.On("Save", mock.Anything, mock.MatchedBy(func(w model.Wallet) bool {
		return w.WalletAmount.IsZero() && w.BalanceAmount.IsZero()
	})).Return(nil)

	out, err := uc.GetWallet(ctx, "u1")
	assert.NoError(t, err)
	assert.True(t, out.WalletAmount.IsZero())
	assert.True(t, out.BalanceAmount.IsZero())

	repos.wallets.AssertExpectations(t)
}

func TestWalletUsecase_GetWallet_DoesNotSaveWhenNotExpired(t *testing.T) {
	ctx := context.Background()
	repos := newTxReposMock()
	uc := newWalletUsecaseForTest(repos)

	future := testNow.Add(time.Hour)
	repos.wallets.On("FindByUserIDForUpdate", mock.Anything, "u1").Return(model.Wallet{
		ID:            "w1",
		UserID:        "u1",
		WalletAmount:  decimal.NewFromInt(300),
		BalanceAmount: decimal.NewFromInt(120),
		ExpiryAt:      &future,
	}, nil)

	out, err := uc.GetWallet(ctx, "u1")
	assert.NoError(t, err)
	assert.True(t, out.BalanceAmount.Equal(decimal.NewFromInt(120)))

	repos.wallets.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestWalletUsecase_GetWallet_NotFound(t *testing.T) {
	repos := newTxReposMock()
	uc := newWalletUsecaseForTest(repos)

	repos.wallets.On("FindByUserIDForUpdate", mock.Anything, "u1").Return(model.Wallet{}, repo.ErrNotFound)

	_, err := uc.GetWallet(context.Background(), "u1")
	assertErrContains(t, err, "wallet not found")
}

// =====================
// TransactionHistory / ListWalletsByBuilding
// =====================

func TestWalletUsecase_TransactionHistory_MapsLedger(t *testing.T) {
	ctx := context.Background()
	repos := newTxReposMock()
	uc := newWalletUsecaseForTest(repos)

	repos.users.On("FindByID", mock.Anything, "u1").Return(model.User{ID: "u1"}, nil)
	repos.walletTxns.On("ListByUserID", mock.Anything, "u1").Return([]model.WalletTransaction{
		{Amount: decimal.NewFromInt(-30), CreatedDatetime: testNow},
		{Amount: decimal.NewFromInt(100), CreatedDatetime: testNow.Add(-time.Hour)},
	}, nil)

	out, err := uc.TransactionHistory(ctx, "u1")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(out))
	assert.True(t, out[0].Amount.Equal(decimal.NewFromInt(-30)))
	assert.True(t, out[1].Amount.Equal(decimal.NewFromInt(100)))
}

func TestWalletUsecase_ListWalletsByBuilding_NotFoundWhenEmpty(t *testing.T) {
	repos := newTxReposMock()
	uc := newWalletUsecaseForTest(repos)

	repos.wallets.On("ListByBuildingID", mock.Anything, "b1").Return([]model.Wallet{}, nil)

	_, err := uc.ListWalletsByBuilding(context.Background(), "b1")
	assertErrContains(t, err, "no wallets found for this building")
}

func TestWalletUsecase_ListWalletsByBuilding_SkipsMissingUsers(t *testing.T) {
	ctx := context.Background()
	repos := newTxReposMock()
	uc := newWalletUsecaseForTest(repos)

	repos.wallets.On("ListByBuildingID", mock.Anything, "b1").Return([]model.Wallet{
		{ID: "w1", UserID: "u1", BalanceAmount: decimal.NewFromInt(10)},
		{ID: "w2", UserID: "gone", BalanceAmount: decimal.NewFromInt(20)},
	}, nil)
	repos.users.On("FindByID", mock.Anything, "u1").Return(model.User{ID: "u1", Name: "Alice", PhoneNumber: "+65", CompanyEmail: "a@x.com"}, nil)
	repos.users.On("FindByID", mock.Anything, "gone").Return(model.User{}, repo.ErrUserNotFound)

	out, err := uc.ListWalletsByBuilding(ctx, "b1")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(out))
	assert.Equal(t, "Alice", out[0].UserName)
}
