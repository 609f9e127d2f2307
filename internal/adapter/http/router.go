package http

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Health      *Handler
	Loans       *LoanHandler
	Approvals   *ApprovalHandler
	Vouchers    *VoucherHandler
	Delegations *DelegationHandler
}

// Register mounts the API on e. mw wraps the mutating routes only.
func Register(e *echo.Echo, h Handlers, mw ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)
	e.GET("/ready", h.Health.Ready)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("", mw...)

	api.POST("/loans", h.Loans.Submit)
	api.GET("/loans", h.Loans.List)
	api.GET("/loans/:loan_id", h.Loans.Get)
	api.DELETE("/loans/:loan_id", h.Loans.Delete)
	api.POST("/loans/:loan_id/accept", h.Loans.Accept)
	api.POST("/loans/:loan_id/approve", h.Approvals.Approve)
	api.POST("/loans/:loan_id/reject", h.Loans.Reject)
	api.POST("/loans/:loan_id/disburse", h.Loans.Disburse)
	api.POST("/loans/:loan_id/vouchers", h.Vouchers.Issue)
	api.GET("/loans/:loan_id/vouchers", h.Vouchers.ListByLoan)

	api.GET("/vouchers/:voucher_id", h.Vouchers.Get)
	api.GET("/vouchers/by-code/:code", h.Vouchers.GetByCode)
	api.GET("/vouchers/:voucher_id/quote", h.Vouchers.Quote)
	api.POST("/vouchers/:voucher_id/consume", h.Vouchers.Consume)
	api.POST("/vouchers/:voucher_id/settle", h.Vouchers.Settle)
	api.POST("/vouchers/:voucher_id/suspend", h.Vouchers.Suspend)

	api.POST("/delegations", h.Delegations.Create)
	api.GET("/delegations", h.Delegations.ListAccepted)
	api.GET("/delegations/:trader_id", h.Delegations.Get)
	api.POST("/delegations/:trader_id/accept", h.Delegations.Accept)
	api.POST("/delegations/:trader_id/top-up", h.Delegations.TopUp)
}
