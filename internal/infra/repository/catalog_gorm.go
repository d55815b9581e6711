package repository

import (
	"context"
	"errors"

	"foodcourt/internal/domain/model"
	repo "foodcourt/internal/repository"

	"gorm.io/gorm"
)

type CatalogGormRepository struct {
	db *gorm.DB
}

func NewCatalogGormRepository(db *gorm.DB) *CatalogGormRepository {
	return &CatalogGormRepository{db: db}
}

func (r *CatalogGormRepository) FindItemByID(ctx context.Context, itemID string) (model.Item, error) {
	var item model.Item
	err := r.db.WithContext(ctx).Where("id = ?", itemID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Item{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Item{}, err
	}
	return item, nil
}

func (r *CatalogGormRepository) FindStallByID(ctx context.Context, stallID string) (model.Stall, error) {
	var stall model.Stall
	err := r.db.WithContext(ctx).Where("id = ?", stallID).First(&stall).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Stall{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Stall{}, err
	}
	return stall, nil
}
