package repository

import (
	"context"
	"errors"

	"foodcourt/internal/domain/model"
	repo "foodcourt/internal/repository"

	"gorm.io/gorm"
)

type WalletGroupGormRepository struct {
	db *gorm.DB
}

func NewWalletGroupGormRepository(db *gorm.DB) *WalletGroupGormRepository {
	return &WalletGroupGormRepository{db: db}
}

func (r *WalletGroupGormRepository) Create(ctx context.Context, group model.WalletGroup) (model.WalletGroup, error) {
	if err := r.db.WithContext(ctx).Create(&group).Error; err != nil {
		return model.WalletGroup{}, err
	}
	return group, nil
}

func (r *WalletGroupGormRepository) FindByID(ctx context.Context, groupID string) (model.WalletGroup, error) {
	var g model.WalletGroup
	err := r.db.WithContext(ctx).Where("id = ?", groupID).First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.WalletGroup{}, repo.ErrNotFound
	}
	if err != nil {
		return model.WalletGroup{}, err
	}
	return g, nil
}

func (r *WalletGroupGormRepository) Save(ctx context.Context, group model.WalletGroup) error {
	res := r.db.WithContext(ctx).Model(&model.WalletGroup{}).
		Where("id = ?", group.ID).
		Updates(map[string]interface{}{
			"group_name":  group.GroupName,
			"building_id": group.BuildingID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *WalletGroupGormRepository) ListMembers(ctx context.Context, groupID string) ([]model.WalletGroupMember, error) {
	var members []model.WalletGroupMember
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_datetime asc").
		Find(&members).Error
	if err != nil {
		return []model.WalletGroupMember{}, err
	}
	return members, nil
}

func (r *WalletGroupGormRepository) AddMember(ctx context.Context, member model.WalletGroupMember) error {
	return r.db.WithContext(ctx).Create(&member).Error
}

func (r *WalletGroupGormRepository) MemberExistsByPhone(ctx context.Context, groupID string, phone string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.WalletGroupMember{}).
		Where("group_id = ? AND phone_number = ?", groupID, phone).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *WalletGroupGormRepository) RemoveMemberByPhone(ctx context.Context, groupID string, phone string) error {
	res := r.db.WithContext(ctx).
		Where("group_id = ? AND phone_number = ?", groupID, phone).
		Delete(&model.WalletGroupMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
