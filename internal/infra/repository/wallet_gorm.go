package repository

import (
	"context"
	"errors"

	"foodcourt/internal/domain/model"
	repo "foodcourt/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WalletGormRepository struct {
	db *gorm.DB
}

func NewWalletGormRepository(db *gorm.DB) *WalletGormRepository {
	return &WalletGormRepository{db: db}
}

func (r *WalletGormRepository) FindByUserID(ctx context.Context, userID string) (model.Wallet, error) {
	var w model.Wallet
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Wallet{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Wallet{}, err
	}
	return w, nil
}

// SELECT ... FOR UPDATE。同一ウォレットへの入出金を直列化する。
func (r *WalletGormRepository) FindByUserIDForUpdate(ctx context.Context, userID string) (model.Wallet, error) {
	var w model.Wallet
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Wallet{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Wallet{}, err
	}
	return w, nil
}

func (r *WalletGormRepository) Create(ctx context.Context, wallet model.Wallet) (model.Wallet, error) {
	if err := r.db.WithContext(ctx).Create(&wallet).Error; err != nil {
		return model.Wallet{}, err
	}
	return wallet, nil
}

func (r *WalletGormRepository) Save(ctx context.Context, wallet model.Wallet) error {
	res := r.db.WithContext(ctx).Model(&model.Wallet{}).
		Where("id = ?", wallet.ID).
		Updates(map[string]interface{}{
			"wallet_amount":  wallet.WalletAmount,
			"balance_amount": wallet.BalanceAmount,
			"expiry_at":      wallet.ExpiryAt,
			"is_retainable":  wallet.IsRetainable,
			"building_id":    wallet.BuildingID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *WalletGormRepository) ListByBuildingID(ctx context.Context, buildingID string) ([]model.Wallet, error) {
	var wallets []model.Wallet
	err := r.db.WithContext(ctx).Where("building_id = ?", buildingID).Find(&wallets).Error
	if err != nil {
		return []model.Wallet{}, err
	}
	return wallets, nil
}

func (r *WalletGormRepository) ListByUserIDs(ctx context.Context, userIDs []string) ([]model.Wallet, error) {
	var wallets []model.Wallet
	if len(userIDs) == 0 {
		return wallets, nil
	}
	err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&wallets).Error
	if err != nil {
		return []model.Wallet{}, err
	}
	return wallets, nil
}
