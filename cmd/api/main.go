package main

import (
	"context"
	"log"
	"time"

	"foodcourt/internal/config"
	"foodcourt/internal/domain/model"
	"foodcourt/internal/handler"
	"foodcourt/internal/infra/db"
	infraRepo "foodcourt/internal/infra/repository"
	"foodcourt/internal/server"
	"foodcourt/internal/usecase"

	"github.com/joho/godotenv"
	"gorm.io/gorm/clause"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

// OTPの送信先。SMS業者をつなぐまではログに出すだけ。
type logOTPSender struct{}

func (s *logOTPSender) SendOTP(ctx context.Context, phoneNumber string, code string) error {
	log.Printf("otp for %s: %s", phoneNumber, code)
	return nil
}

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Building{},
		&model.Stall{},
		&model.Item{},
		&model.Wallet{},
		&model.WalletTransaction{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderTokenCounter{},
		&model.WalletGroup{},
		&model.WalletGroupMember{},
	); err != nil {
		log.Fatal(err)
	}

	//トークン採番のカウンター行を先に用意しておく
	if err := gormDB.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.OrderTokenCounter{ID: 1, LastValue: 0}).Error; err != nil {
		log.Fatal(err)
	}

	//usecaseに渡す部品
	clock := &realClock{}
	tx := infraRepo.NewTxManagerGorm(gormDB)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(tx, &logOTPSender{}, clock, cfg.JWTSecret, cfg.OTPTTL, cfg.AccessTokenTTL)
	walletUC := usecase.NewWalletUsecase(tx, clock, cfg.TopUpWindow)
	cartUC := usecase.NewCartUsecase(tx)
	orderUC := usecase.NewOrderUsecase(tx, clock)
	groupUC := usecase.NewWalletGroupUsecase(tx, clock, cfg.TopUpWindow)

	//Handler生成
	h := server.Handlers{
		Auth:        handler.NewAuthHandler(authUC),
		Wallet:      handler.NewWalletHandler(walletUC),
		Cart:        handler.NewCartHandler(cartUC),
		Order:       handler.NewOrderHandler(orderUC),
		WalletGroup: handler.NewWalletGroupHandler(groupUC),
	}

	//Server起動
	e := server.New(cfg, h)
	if err := server.Start(e, ":"+cfg.Port); err != nil {
		log.Fatal(err)
	}
}
