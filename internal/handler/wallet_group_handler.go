package handler

import (
	"net/http"

	"foodcourt/internal/config"
	"foodcourt/internal/middleware"
	"foodcourt/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /wallet-groupsのHTTP
type WalletGroupHandler struct {
	uc *usecase.WalletGroupUsecase
}

// DI
func NewWalletGroupHandler(uc *usecase.WalletGroupUsecase) *WalletGroupHandler {
	return &WalletGroupHandler{uc: uc}
}

type CreateGroupRequest struct {
	GroupName    string   `json:"group_name"`
	BuildingID   string   `json:"building_id"`
	PhoneNumbers []string `json:"phone_numbers"`
}

type FundGroupRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	IsRetainable bool            `json:"is_retainable"`
}

type GroupMemberRequest struct {
	PhoneNumber string `json:"phone_number"`
}

// /wallet-groups配下を登録
func (h *WalletGroupHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/wallet-groups")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("", h.createGroup)
	g.GET("/:id", h.getGroup)
	g.POST("/:id/fund", h.fundGroup)
	g.POST("/:id/members", h.addMember)
	g.DELETE("/:id/members", h.removeMember)
	g.GET("/:id/wallets", h.listWallets)
}

func (h *WalletGroupHandler) createGroup(c echo.Context) error {
	var req CreateGroupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreateGroup(c.Request().Context(), usecase.CreateGroupInput{
		GroupName:    req.GroupName,
		BuildingID:   req.BuildingID,
		PhoneNumbers: req.PhoneNumbers,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *WalletGroupHandler) getGroup(c echo.Context) error {
	out, err := h.uc.GetGroup(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *WalletGroupHandler) fundGroup(c echo.Context) error {
	var req FundGroupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.FundGroup(c.Request().Context(), c.Param("id"), req.Amount, req.IsRetainable)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *WalletGroupHandler) addMember(c echo.Context) error {
	var req GroupMemberRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.AddMember(c.Request().Context(), c.Param("id"), req.PhoneNumber)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *WalletGroupHandler) removeMember(c echo.Context) error {
	var req GroupMemberRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.RemoveMember(c.Request().Context(), c.Param("id"), req.PhoneNumber)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *WalletGroupHandler) listWallets(c echo.Context) error {
	out, err := h.uc.ListGroupWallets(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
