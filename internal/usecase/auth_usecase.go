package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	repo "foodcourt/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// OTPの送信手段（SMS業者など）。usecaseは送り方を知らない。
type OTPSender interface {
	SendOTP(ctx context.Context, phoneNumber string, code string) error
}

// AuthUsecase は電話番号＋ワンタイムコードのログインを持つ。
// コードは平文では保存せず、bcryptハッシュと期限だけをユーザー行に持つ。
type AuthUsecase struct {
	tx        repo.TransactionManager
	sender    OTPSender
	clock     Clock
	jwtSecret string
	otpTTL    time.Duration
	tokenTTL  time.Duration
}

func NewAuthUsecase(
	tx repo.TransactionManager,
	sender OTPSender,
	clock Clock,
	jwtSecret string,
	otpTTL time.Duration,
	tokenTTL time.Duration,
) *AuthUsecase {
	return &AuthUsecase{
		tx:        tx,
		sender:    sender,
		clock:     clock,
		jwtSecret: jwtSecret,
		otpTTL:    otpTTL,
		tokenTTL:  tokenTTL,
	}
}

type AuthUserDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
}

type VerifyOTPResponse struct {
	User        AuthUserDTO `json:"user"`
	AccessToken string      `json:"access_token"`
	ExpiresIn   int         `json:"expires_in"`
}

// RequestOTP はコードを発行してSMSで送る。送信に失敗したら保存も巻き戻す。
// 再送は前回のコードを上書きする。
func (u *AuthUsecase) RequestOTP(ctx context.Context, phone string) error {
	if phone == "" {
		return NewHTTPError(http.StatusBadRequest, "phone number is required")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		user, err := r.Users().FindByPhoneNumber(ctx, phone)
		if err != nil {
			if errors.Is(err, repo.ErrUserNotFound) {
				return NewHTTPError(http.StatusNotFound, "user not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		code, err := newOTPCode()
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "failed to generate otp")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "failed to generate otp")
		}

		expiresAt := u.clock.Now().Add(u.otpTTL)
		if err := r.Users().SaveOTP(ctx, user.ID, string(hash), expiresAt); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := u.sender.SendOTP(ctx, user.PhoneNumber, code); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "failed to send otp")
		}
		return nil
	})
}

// VerifyOTP はコードを照合してアクセストークンを返す。
// 成功したらコードは使い捨て（OTP欄をクリアする）。
func (u *AuthUsecase) VerifyOTP(ctx context.Context, phone string, code string) (VerifyOTPResponse, error) {
	if phone == "" || code == "" {
		return VerifyOTPResponse{}, NewHTTPError(http.StatusBadRequest, "phone number and otp are required")
	}

	var out VerifyOTPResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		user, err := r.Users().FindByPhoneNumber(ctx, phone)
		if err != nil {
			if errors.Is(err, repo.ErrUserNotFound) {
				return NewHTTPError(http.StatusNotFound, "user not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		now := u.clock.Now()
		if user.OTPHash == nil || user.OTPExpiresAt == nil || now.After(*user.OTPExpiresAt) {
			return NewHTTPError(http.StatusUnauthorized, "invalid or expired otp")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(*user.OTPHash), []byte(code)); err != nil {
			return NewHTTPError(http.StatusUnauthorized, "invalid or expired otp")
		}

		if err := r.Users().ClearOTP(ctx, user.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		token, expiresIn, err := u.issueAccessToken(user.ID, now)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "failed to issue token")
		}

		out = VerifyOTPResponse{
			User: AuthUserDTO{
				ID:          user.ID,
				Name:        user.Name,
				PhoneNumber: user.PhoneNumber,
				Email:       user.CompanyEmail,
			},
			AccessToken: token,
			ExpiresIn:   expiresIn,
		}
		return nil
	})

	if err != nil {
		return VerifyOTPResponse{}, err
	}
	return out, nil
}

func (u *AuthUsecase) issueAccessToken(userID string, now time.Time) (string, int, error) {
	exp := now.Add(u.tokenTTL)

	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := t.SignedString([]byte(u.jwtSecret))
	if err != nil {
		return "", 0, err
	}
	return signed, int(u.tokenTTL.Seconds()), nil
}

// 6桁の数字コード。先頭ゼロもあり得るので文字列で扱う。
func newOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
