package http

import (
	"net/http"

	"credit-voucher-engine/internal/usecase/voucher"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type VoucherHandler struct {
	uc  *voucher.Usecase
	log *zap.Logger
}

func NewVoucherHandler(uc *voucher.Usecase, log *zap.Logger) *VoucherHandler {
	return &VoucherHandler{uc: uc, log: log}
}

type issueVoucherReq struct {
	LoanID        string          `param:"loan_id" json:"-" validate:"required,hex32"`
	CreditLimit   decimal.Decimal `json:"credit_limit"   validate:"required,dgt=0,dec2"`
	VoucherType   string          `json:"voucher_type"   validate:"required,voucher_type"`
	RepaymentDays int             `json:"repayment_days" validate:"required,gte=1,lte=365"`
}

type voucherPathReq struct {
	VoucherID string `param:"voucher_id" json:"-" validate:"required,hex32"`
}

type voucherCodeReq struct {
	Code string `param:"code" validate:"required,max=32"`
}

type consumeReq struct {
	VoucherID string          `param:"voucher_id" json:"-" validate:"required,hex32"`
	Amount    decimal.Decimal `json:"amount"      validate:"required,dgt=0,dec2"`
}

type suspendReq struct {
	VoucherID string `param:"voucher_id" json:"-" validate:"required,hex32"`
	Reason    string `json:"reason"      validate:"required,max=500"`
}

type quoteReq struct {
	VoucherID     string          `param:"voucher_id"     validate:"required,hex32"`
	OrderSubtotal decimal.Decimal `query:"order_subtotal" validate:"required,dgt=0,dec2"`
}

// Issue mints an additional voucher for an approved or disbursed loan.
func (h *VoucherHandler) Issue(c echo.Context) error {
	var req issueVoucherReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Issue(c.Request().Context(), voucher.IssueInput(req))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *VoucherHandler) ListByLoan(c echo.Context) error {
	var req loanPathReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dtos, err := h.uc.ListByLoan(c.Request().Context(), req.LoanID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": dtos})
}

func (h *VoucherHandler) Get(c echo.Context) error {
	var req voucherPathReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Get(c.Request().Context(), req.VoucherID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *VoucherHandler) GetByCode(c echo.Context) error {
	var req voucherCodeReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.GetByCode(c.Request().Context(), req.Code)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *VoucherHandler) Consume(c echo.Context) error {
	var req consumeReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Consume(c.Request().Context(), req.VoucherID, req.Amount)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *VoucherHandler) Settle(c echo.Context) error {
	var req voucherPathReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Settle(c.Request().Context(), req.VoucherID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *VoucherHandler) Suspend(c echo.Context) error {
	var req suspendReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Suspend(c.Request().Context(), req.VoucherID, req.Reason)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *VoucherHandler) Quote(c echo.Context) error {
	var req quoteReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Quote(c.Request().Context(), req.VoucherID, req.OrderSubtotal)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}
