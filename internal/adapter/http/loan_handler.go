package http

import (
	"net/http"
	"strings"

	"credit-voucher-engine/internal/adapter/middleware"
	"credit-voucher-engine/internal/usecase/loan"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type LoanHandler struct {
	uc  *loan.Usecase
	log *zap.Logger
}

func NewLoanHandler(uc *loan.Usecase, log *zap.Logger) *LoanHandler {
	return &LoanHandler{uc: uc, log: log}
}

type submitLoanReq struct {
	RestaurantID    string          `json:"restaurant_id"    validate:"required,ident"`
	RequestedAmount decimal.Decimal `json:"requested_amount" validate:"required,dgt=0,dec2"`
	RepaymentDays   int             `json:"repayment_days"   validate:"required,gte=1,lte=365"`
}

type loanPathReq struct {
	LoanID string `param:"loan_id" json:"-" validate:"required,hex32"`
}

type rejectLoanReq struct {
	LoanID string `param:"loan_id" json:"-" validate:"required,hex32"`
	Reason string `json:"reason"   validate:"required,max=500"`
}

type listLoansReq struct {
	RestaurantID string `query:"restaurant_id" validate:"omitempty,ident"`
	Status       string `query:"status"        validate:"omitempty,oneof=pending accepted approved rejected disbursed settled"`
	Limit        int    `query:"limit"         validate:"omitempty,gte=1,lte=500"`
}

func (h *LoanHandler) Submit(c echo.Context) error {
	var req submitLoanReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Submit(c.Request().Context(), loan.SubmitInput(req))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) Get(c echo.Context) error {
	var req loanPathReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Get(c.Request().Context(), req.LoanID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) List(c echo.Context) error {
	var req listLoansReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dtos, err := h.uc.List(c.Request().Context(), loan.ListInput(req))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": dtos})
}

func (h *LoanHandler) Accept(c echo.Context) error {
	var req loanPathReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Accept(c.Request().Context(), req.LoanID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Reject(c echo.Context) error {
	var req rejectLoanReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Reject(c.Request().Context(), req.LoanID, req.Reason)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Disburse(c echo.Context) error {
	var req loanPathReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Disburse(c.Request().Context(), req.LoanID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// Delete soft-deletes the application; the actor header is recorded as deleted_by.
func (h *LoanHandler) Delete(c echo.Context) error {
	var req loanPathReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	actor := strings.TrimSpace(c.Request().Header.Get(middleware.HeaderActorID))
	if err := h.uc.Delete(c.Request().Context(), req.LoanID, actor); err != nil {
		return writeError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
