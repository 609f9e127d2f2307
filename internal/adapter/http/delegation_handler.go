package http

import (
	"net/http"

	"credit-voucher-engine/internal/usecase/delegation"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type DelegationHandler struct {
	uc  *delegation.Usecase
	log *zap.Logger
}

func NewDelegationHandler(uc *delegation.Usecase, log *zap.Logger) *DelegationHandler {
	return &DelegationHandler{uc: uc, log: log}
}

type createDelegationReq struct {
	TraderID       string          `json:"trader_id"       validate:"required,ident"`
	TraderName     string          `json:"trader_name"     validate:"required,max=128"`
	InitialBalance decimal.Decimal `json:"initial_balance" validate:"dgte=0,dec2"`
}

type traderPathReq struct {
	TraderID string `param:"trader_id" json:"-" validate:"required,ident"`
}

type topUpReq struct {
	TraderID string          `param:"trader_id" json:"-" validate:"required,ident"`
	Amount   decimal.Decimal `json:"amount"     validate:"required,dgt=0,dec2"`
}

func (h *DelegationHandler) Create(c echo.Context) error {
	var req createDelegationReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Create(c.Request().Context(), delegation.CreateInput(req))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *DelegationHandler) Accept(c echo.Context) error {
	var req traderPathReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Accept(c.Request().Context(), req.TraderID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *DelegationHandler) TopUp(c echo.Context) error {
	var req topUpReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.TopUp(c.Request().Context(), req.TraderID, req.Amount)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *DelegationHandler) Get(c echo.Context) error {
	var req traderPathReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Get(c.Request().Context(), req.TraderID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// ListAccepted is the directory of traders who can approve on a restaurant's behalf.
func (h *DelegationHandler) ListAccepted(c echo.Context) error {
	dtos, err := h.uc.ListAccepted(c.Request().Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": dtos})
}
