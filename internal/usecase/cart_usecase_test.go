package usecase

import (
	"context"
	"testing"

	"foodcourt/internal/domain/model"
	repo "foodcourt/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func decPtr(d decimal.Decimal) *decimal.Decimal { return &d }

func TestCartUsecase_AddItem_CreatesCartWithItemStall(t *testing.T) {
	ctx := context.Background()
	repos := newTxReposMock()
	uc := NewCartUsecase(newTxManagerMock(repos))

	item := model.Item{
		ID:      "i1",
		Name:    "Chicken Rice",
		StallID: "s1",
		Price:   decimal.NewFromInt(5),
	}
	repos.catalog.On("FindItemByID", mock.Anything, "i1").Return(item, nil)
	repos.carts.On("FindByUserID", mock.Anything, "u1").Return(model.Cart{}, repo.ErrNotFound)
	repos.carts.On("Create", mock.Anything, mock.MatchedBy(func(c model.Cart) bool {
		return c.UserID == "u1" && c.StallID == "s1"
	})).Return(model.Cart{ID: "c1", UserID: "u1", StallID: "s1"}, nil)

	repos.cartItems.On("FindByCartAndItem", mock.Anything, "c1", "i1").Return(model.CartItem{}, repo.ErrNotFound)
	repos.cartItems.On("Create", mock.Anything, mock.MatchedBy(func(ci model.CartItem) bool {
		return ci.CartID == "c1" && ci.ItemID == "i1" && ci.Quantity == 2 &&
			ci.PriceAtAddition.Equal(decimal.NewFromInt(5))
	})).Return(nil)

	repos.cartItems.On("ListByCartID", mock.Anything, "c1").Return([]model.CartItem{
		{ID: "ci1", CartID: "c1", ItemID: "i1", Quantity: 2, PriceAtAddition: decimal.NewFromInt(5)},
	}, nil)

	out, err := uc.AddItem(ctx, "u1", AddCartInput{ItemID: "i1", Quantity: 2})
	assert.NoError(t, err)
	assert.Equal(t, "c1", out.ID)
	assert.Equal(t, "s1", out.StallID)
	assert.True(t, out.Total.Equal(decimal.NewFromInt(10)))

	repos.carts.AssertExpectations(t)
	repos.cartItems.AssertExpectations(t)
}

func TestCartUsecase_AddItem_SnapshotsFinalPrice(t *testing.T) {
	ctx := context.Background()
	repos := newTxReposMock()
	uc := NewCartUsecase(newTxManagerMock(repos))

	// final_priceがあれば定価ではなくそちらを控える
	item := model.Item{
		ID:         "i1",
		Name:       "Laksa",
		StallID:    "s1",
		Price:      decimal.NewFromInt(8),
		FinalPrice: decPtr(decimal.NewFromFloat(8.56)),
	}
	repos.catalog.On("FindItemByID", mock.Anything, "i1").Return(item, nil)
	repos.carts.On("FindByUserID", mock.Anything, "u1").Return(model.Cart{ID: "c1", UserID: "u1", StallID: "s1"}, nil)
	repos.cartItems.On("FindByCartAndItem", mock.Anything, "c1", "i1").Return(model.CartItem{}, repo.ErrNotFound)
	repos.cartItems.On("Create", mock.Anything, mock.MatchedBy(func(ci model.CartItem) bool {
		return ci.PriceAtAddition.Equal(decimal.NewFromFloat(8.56))
	})).Return(nil)
	repos.cartItems.On("ListByCartID", mock.Anything, "c1").Return([]model.CartItem{}, nil)

	_, err := uc.AddItem(ctx, "u1", AddCartInput{ItemID: "i1", Quantity: 1})
	assert.NoError(t, err)

	repos.cartItems.AssertExpectations(t)
}

func TestCartUsecase_AddItem_AccumulatesExistingLine(t *testing.T) {
	ctx := context.Background()
	repos := newTxReposMock()
	uc := NewCartUsecase(newTxManagerMock(repos))

	item := model.Item{ID: "i1", StallID: "s1", Price: decimal.NewFromInt(5)}
	repos.catalog.On("FindItemByID", mock.Anything, "i1").Return(item, nil)
	repos.carts.On("FindByUserID", mock.Anything, "u1").Return(model.Cart{ID: "c1", UserID: "u1", StallID: "s1"}, nil)
	repos.cartItems.On("FindByCartAndItem", mock.Anything, "c1", "i1").Return(model.CartItem{
		ID: "ci1", CartID: "c1", ItemID: "i1", Quantity: 2, PriceAtAddition: decimal.NewFromInt(5),
	}, nil)
	repos.cartItems.On("UpdateQuantity", mock.Anything, "ci1", int64(5)).Return(nil)
	repos.cartItems.On("ListByCartID", mock.Anything, "c1").Return([]model.CartItem{}, nil)

	_, err := uc.AddItem(ctx, "u1", AddCartInput{ItemID: "i1", Quantity: 3})
	assert.NoError(t, err)

	repos.cartItems.AssertExpectations(t)
	repos.cartItems.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCartUsecase_AddItems_RejectsMixedStalls(t *testing.T) {
	ctx := context.Background()
	repos := newTxReposMock()
	uc := NewCartUsecase(newTxManagerMock(repos))

	repos.catalog.On("FindItemByID", mock.Anything, "i1").Return(model.Item{ID: "i1", StallID: "s1"}, nil)
	repos.catalog.On("FindItemByID", mock.Anything, "i2").Return(model.Item{ID: "i2", StallID: "s2"}, nil)

	_, err := uc.AddItems(ctx, "u1", []AddCartInput{
		{ItemID: "i1", Quantity: 1},
		{ItemID: "i2", Quantity: 1},
	})
	assertErrContains(t, err, "items must be from a single stall")

	// 1件も書かれていない
	repos.carts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	repos.cartItems.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCartUsecase_AddItem_RejectsDifferentStallFromExistingCart(t *testing.T) {
	ctx := context.Background()
	repos := newTxReposMock()
	uc := NewCartUsecase(newTxManagerMock(repos))

	repos.catalog.On("FindItemByID", mock.Anything, "i2").Return(model.Item{ID: "i2", StallID: "s2"}, nil)
	repos.carts.On("FindByUserID", mock.Anything, "u1").Return(model.Cart{ID: "c1", UserID: "u1", StallID: "s1"}, nil)

	_, err := uc.AddItem(ctx, "u1", AddCartInput{ItemID: "i2", Quantity: 1})
	assertErrContains(t, err, "items must be from a single stall")

	repos.cartItems.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCartUsecase_AddItem_ItemNotFound(t *testing.T) {
	repos := newTxReposMock()
	uc := NewCartUsecase(newTxManagerMock(repos))

	repos.catalog.On("FindItemByID", mock.Anything, "missing").Return(model.Item{}, repo.ErrNotFound)

	_, err := uc.AddItem(context.Background(), "u1", AddCartInput{ItemID: "missing", Quantity: 1})
	assertErrContains(t, err, "item not found")
}

func TestCartUsecase_UpdateQuantity_ZeroDeletesLine(t *testing.T) {
	ctx := context.Background()
	repos := newTxReposMock()
	uc := NewCartUsecase(newTxManagerMock(repos))

	repos.carts.On("FindByUserID", mock.Anything, "u1").Return(model.Cart{ID: "c1", UserID: "u1", StallID: "s1"}, nil)
	repos.cartItems.On("FindByCartAndItem", mock.Anything, "c1", "i1").Return(model.CartItem{ID: "ci1"}, nil)
	repos.cartItems.On("DeleteByID", mock.Anything, "ci1").Return(nil)
	repos.cartItems.On("ListByCartID", mock.Anything, "c1").Return([]model.CartItem{}, nil)

	out, err := uc.UpdateQuantity(ctx, "u1", "i1", 0)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(out.Items))

	repos.cartItems.AssertExpectations(t)
	repos.cartItems.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_UpdateQuantity_LineNotInCart(t *testing.T) {
	repos := newTxReposMock()
	uc := NewCartUsecase(newTxManagerMock(repos))

	repos.carts.On("FindByUserID", mock.Anything, "u1").Return(model.Cart{ID: "c1"}, nil)
	repos.cartItems.On("FindByCartAndItem", mock.Anything, "c1", "i9").Return(model.CartItem{}, repo.ErrNotFound)

	_, err := uc.UpdateQuantity(context.Background(), "u1", "i9", 2)
	assertErrContains(t, err, "item not found in cart")
}

func TestCartUsecase_Clear_DeletesLinesAndCart(t *testing.T) {
	ctx := context.Background()
	repos := newTxReposMock()
	uc := NewCartUsecase(newTxManagerMock(repos))

	repos.carts.On("FindByUserID", mock.Anything, "u1").Return(model.Cart{ID: "c1", UserID: "u1"}, nil)
	repos.cartItems.On("DeleteByCartID", mock.Anything, "c1").Return(nil)
	repos.carts.On("DeleteByID", mock.Anything, "c1").Return(nil)

	err := uc.Clear(ctx, "u1")
	assert.NoError(t, err)

	repos.carts.AssertExpectations(t)
	repos.cartItems.AssertExpectations(t)
}

func TestCartUsecase_Get_NotFound(t *testing.T) {
	repos := newTxReposMock()
	uc := NewCartUsecase(newTxManagerMock(repos))

	repos.carts.On("FindByUserID", mock.Anything, "u1").Return(model.Cart{}, repo.ErrNotFound)

	_, err := uc.Get(context.Background(), "u1")
	assertErrContains(t, err, "cart not found")
}

func TestCartUsecase_Get_TotalsSnapshotPrices(t *testing.T) {
	ctx := context.Background()
	repos := newTxReposMock()
	uc := NewCartUsecase(newTxManagerMock(repos))

	repos.carts.On("FindByUserID", mock.Anything, "u1").Return(model.Cart{ID: "c1", UserID: "u1", StallID: "s1"}, nil)
	repos.cartItems.On("ListByCartID", mock.Anything, "c1").Return([]model.CartItem{
		{ID: "ci1", ItemID: "i1", Quantity: 2, PriceAtAddition: decimal.NewFromFloat(4.50)},
		{ID: "ci2", ItemID: "i2", Quantity: 1, PriceAtAddition: decimal.NewFromInt(3)},
	}, nil)
	repos.catalog.On("FindItemByID", mock.Anything, "i1").Return(model.Item{ID: "i1", Name: "Noodles"}, nil)
	repos.catalog.On("FindItemByID", mock.Anything, "i2").Return(model.Item{}, repo.ErrNotFound)

	out, err := uc.Get(ctx, "u1")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(out.Items))
	assert.Equal(t, "Noodles", out.Items[0].Name)
	assert.Equal(t, "", out.Items[1].Name)
	assert.True(t, out.Total.Equal(decimal.NewFromInt(12)))
}
