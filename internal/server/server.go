package server

import (
	"foodcourt/internal/config"
	"foodcourt/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Handlers は起動に必要なハンドラ一式。
type Handlers struct {
	Auth        *handler.AuthHandler
	Wallet      *handler.WalletHandler
	Cart        *handler.CartHandler
	Order       *handler.OrderHandler
	WalletGroup *handler.WalletGroupHandler
}

// New はルート登録済みのechoを返す。
func New(cfg config.Config, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	h.Auth.RegisterRoutes(e)
	h.Wallet.RegisterRoutes(e, cfg)
	h.Cart.RegisterRoutes(e, cfg)
	h.Order.RegisterRoutes(e, cfg)
	h.WalletGroup.RegisterRoutes(e, cfg)

	return e
}

// Start は指定アドレスで待ち受ける。
func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}
