package repository

import (
	"context"

	"foodcourt/internal/domain/model"
)

type WalletGroupRepository interface {
	Create(ctx context.Context, group model.WalletGroup) (model.WalletGroup, error)
	FindByID(ctx context.Context, groupID string) (model.WalletGroup, error)
	Save(ctx context.Context, group model.WalletGroup) error

	// メンバーは別テーブルで持つ（JSON列にはしない）。
	ListMembers(ctx context.Context, groupID string) ([]model.WalletGroupMember, error)
	AddMember(ctx context.Context, member model.WalletGroupMember) error
	MemberExistsByPhone(ctx context.Context, groupID string, phone string) (bool, error)

	// 消した行数0ならErrNotFound。
	RemoveMemberByPhone(ctx context.Context, groupID string, phone string) error
}
