package http

import (
	"net/http"
	"strings"

	"credit-voucher-engine/internal/adapter/middleware"
	"credit-voucher-engine/internal/usecase/approval"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ApprovalHandler struct {
	uc  *approval.Usecase
	log *zap.Logger
}

func NewApprovalHandler(uc *approval.Usecase, log *zap.Logger) *ApprovalHandler {
	return &ApprovalHandler{uc: uc, log: log}
}

type approveLoanReq struct {
	LoanID         string          `param:"loan_id" json:"-" validate:"required,hex32"`
	ApprovedAmount decimal.Decimal `json:"approved_amount" validate:"required,dgt=0,dec2"`
	RepaymentDays  int             `json:"repayment_days"  validate:"required,gte=1,lte=365"`
	VoucherType    string          `json:"voucher_type"    validate:"required,voucher_type"`
	Notes          string          `json:"notes"           validate:"max=1000"`
	// defaults to the Ax-Actor-Id header
	ApprovedBy         string  `json:"approved_by"            validate:"omitempty,ident"`
	OnBehalfOfTraderID *string `json:"on_behalf_of_trader_id" validate:"omitempty,ident"`
}

// Approve approves the loan and issues its voucher in one step. When
// on_behalf_of_trader_id is set the trader's balance fronts the credit.
func (h *ApprovalHandler) Approve(c echo.Context) error {
	var req approveLoanReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	if req.ApprovedBy == "" {
		req.ApprovedBy = strings.TrimSpace(c.Request().Header.Get(middleware.HeaderActorID))
	}
	dto, err := h.uc.Approve(c.Request().Context(), approval.ApproveInput(req))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}
