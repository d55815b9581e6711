package handler

import (
	"net/http"

	"foodcourt/internal/config"
	"foodcourt/internal/middleware"
	"foodcourt/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// ミドルウェアが入れたuser_id（uuid文字列）を取り出す
func getUserIDFromContext(c echo.Context) (string, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	userID, ok := v.(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// /walletのHTTP
type WalletHandler struct {
	uc *usecase.WalletUsecase
}

// DI
func NewWalletHandler(uc *usecase.WalletUsecase) *WalletHandler {
	return &WalletHandler{uc: uc}
}

type TopUpRequest struct {
	Amount     decimal.Decimal `json:"amount"`
	BuildingID *string         `json:"building_id"`
}

type AddMoneyRequest struct {
	Identifier   string          `json:"identifier"`
	Amount       decimal.Decimal `json:"amount"`
	BuildingID   string          `json:"building_id"`
	IsRetainable bool            `json:"is_retainable"`
}

// /wallet配下を登録
func (h *WalletHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/wallet")
	g.Use(middleware.AuthJWT(cfg))

	g.GET("", h.getWallet)
	g.POST("/topup", h.topUp)
	g.GET("/transactions", h.transactions)
	g.POST("/add-money", h.addMoney)
	g.GET("/building/:building_id", h.listByBuilding)
}

func (h *WalletHandler) getWallet(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.GetWallet(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *WalletHandler) topUp(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req TopUpRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.TopUp(c.Request().Context(), userID, req.Amount, req.BuildingID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *WalletHandler) transactions(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.TransactionHistory(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// 電話番号またはメール宛ての入金（管理側の配布）
func (h *WalletHandler) addMoney(c echo.Context) error {
	var req AddMoneyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.AddMoneyByIdentifier(c.Request().Context(), req.Identifier, req.Amount, req.BuildingID, req.IsRetainable)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *WalletHandler) listByBuilding(c echo.Context) error {
	buildingID := c.Param("building_id")

	out, err := h.uc.ListWalletsByBuilding(c.Request().Context(), buildingID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
