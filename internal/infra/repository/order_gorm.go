package repository

import (
	"context"
	"errors"

	"foodcourt/internal/domain/model"
	repo "foodcourt/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (model.Order, error) {
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return model.Order{}, err
	}
	return order, nil
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID string) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_datetime desc").
		Find(&orders).Error
	if err != nil {
		return []model.Order{}, err
	}
	return orders, nil
}

// カウンター行をFOR UPDATEで取ってから+1する。
// ここが全注文共通の直列化ポイントになる。行が無ければ作る。
func (r *OrderGormRepository) NextTokenNumber(ctx context.Context) (int64, error) {
	var counter model.OrderTokenCounter

	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", 1).
		First(&counter).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 初回は行が無くFOR UPDATEでは何もロックできない。
		// ON CONFLICT DO NOTHINGで作ってから取り直せば、同時初期化の
		// 負けた側もユニーク違反にならずロック待ちに入る。
		counter = model.OrderTokenCounter{ID: 1, LastValue: 0}
		if err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&counter).Error; err != nil {
			return 0, err
		}
		if err := r.db.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", 1).
			First(&counter).Error; err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, err
	}

	counter.LastValue++

	res := r.db.WithContext(ctx).Model(&model.OrderTokenCounter{}).
		Where("id = ?", counter.ID).
		Update("last_value", counter.LastValue)
	if res.Error != nil {
		return 0, res.Error
	}

	return counter.LastValue, nil
}
