package repository

import (
	"context"
	"errors"
	"time"

	"foodcourt/internal/domain/model"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// ユーザーディレクトリ。取得とOTP欄の更新だけを約束。
type UserRepository interface {
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID string) (model.User, error)

	// 電話番号からユーザーを1件取得する。
	FindByPhoneNumber(ctx context.Context, phone string) (model.User, error)

	// 電話番号またはメールで1件取得する（トップアップの宛先解決）。
	FindByIdentifier(ctx context.Context, identifier string) (model.User, error)

	// 電話番号のリストでまとめて取得する。
	ListByPhoneNumbers(ctx context.Context, phones []string) ([]model.User, error)

	// OTPのハッシュと期限を保存する。
	SaveOTP(ctx context.Context, userID string, otpHash string, expiresAt time.Time) error

	// OTP欄をクリアする（検証成功後）。
	ClearOTP(ctx context.Context, userID string) error
}
