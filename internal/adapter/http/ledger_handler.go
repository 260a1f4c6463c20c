package http

import (
	"net/http"

	"p2p-lending-ledger/internal/usecase/ledger"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type LedgerHandler struct{ uc *ledger.Usecase }

func NewLedgerHandler(uc *ledger.Usecase) *LedgerHandler { return &LedgerHandler{uc: uc} }

// RegisterRoutes wires the full operation set onto e. The mutating routes
// take any extra middleware (idempotency) the caller wants applied.
func (h *LedgerHandler) RegisterRoutes(e *echo.Echo, commandMW ...echo.MiddlewareFunc) {
	e.POST("/loans", h.RequestLoan, commandMW...)
	e.POST("/loans/:id/accept", h.AcceptLoan, commandMW...)
	e.POST("/loans/:id/collateral", h.DepositCollateral, commandMW...)
	e.POST("/loans/:id/repay", h.Repay, commandMW...)
	e.POST("/loans/:id/default", h.DeclareDefault, commandMW...)

	e.GET("/loans", h.ListLoans)
	e.GET("/loans/count", h.GetLoanCount)
	e.GET("/loans/:id", h.GetLoan)
	e.GET("/loans/:id/history", h.History)
	e.GET("/collateral", h.RequiredCollateral)
}

type requestLoanReq struct {
	Borrower               string          `json:"borrower" validate:"required,actor"`
	Amount                 decimal.Decimal `json:"amount"`
	TermDays               int             `json:"term_days"`
	Purpose                string          `json:"purpose" validate:"max=512"`
	RepaymentFrequencyDays int             `json:"repayment_frequency_days"`
}

func (h *LedgerHandler) RequestLoan(c echo.Context) error {
	var req requestLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.RequestLoan(c.Request().Context(), ledger.RequestLoanInput{
		Borrower:               req.Borrower,
		Amount:                 req.Amount,
		TermDays:               req.TermDays,
		Purpose:                req.Purpose,
		RepaymentFrequencyDays: req.RepaymentFrequencyDays,
	})
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

type acceptLoanReq struct {
	Lender string `json:"lender" validate:"required,actor"`
}

func (h *LedgerHandler) AcceptLoan(c echo.Context) error {
	loanID, err := parseLoanID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan id"})
	}
	var req acceptLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.AcceptLoan(c.Request().Context(), loanID, req.Lender)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type depositCollateralReq struct {
	Borrower string          `json:"borrower" validate:"required,actor"`
	Amount   decimal.Decimal `json:"amount"`
}

func (h *LedgerHandler) DepositCollateral(c echo.Context) error {
	loanID, err := parseLoanID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan id"})
	}
	var req depositCollateralReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.DepositCollateral(c.Request().Context(), loanID, req.Borrower, req.Amount)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type repayReq struct {
	Borrower string `json:"borrower" validate:"required,actor"`
}

func (h *LedgerHandler) Repay(c echo.Context) error {
	loanID, err := parseLoanID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan id"})
	}
	var req repayReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.Repay(c.Request().Context(), loanID, req.Borrower)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type declareDefaultReq struct {
	Lender string `json:"lender" validate:"required,actor"`
}

func (h *LedgerHandler) DeclareDefault(c echo.Context) error {
	loanID, err := parseLoanID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan id"})
	}
	var req declareDefaultReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.DeclareDefault(c.Request().Context(), loanID, req.Lender)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LedgerHandler) GetLoan(c echo.Context) error {
	loanID, err := parseLoanID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan id"})
	}
	dto, err := h.uc.GetLoan(c.Request().Context(), loanID)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LedgerHandler) GetLoanCount(c echo.Context) error {
	n, err := h.uc.GetLoanCount(c.Request().Context())
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"count": n})
}

// ListLoans serves the plain listing plus the two filtered views:
// ?participant=<address> and ?status=<status>&exclude=<address>. The
// participant view carries the side each loan is held on; exclude lets a
// lender browse open requests without their own.
func (h *LedgerHandler) ListLoans(c echo.Context) error {
	if participant := c.QueryParam("participant"); participant != "" {
		out, err := h.uc.QueryByParticipant(c.Request().Context(), participant)
		if err != nil {
			return writeDomainErr(c, err)
		}
		return c.JSON(http.StatusOK, out)
	}
	if status := c.QueryParam("status"); status != "" {
		out, err := h.uc.QueryByStatus(c.Request().Context(), status, c.QueryParam("exclude"))
		if err != nil {
			return writeDomainErr(c, err)
		}
		return c.JSON(http.StatusOK, out)
	}
	out, err := h.uc.ListLoans(c.Request().Context())
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LedgerHandler) History(c echo.Context) error {
	loanID, err := parseLoanID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan id"})
	}
	events, err := h.uc.History(c.Request().Context(), loanID)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, events)
}

func (h *LedgerHandler) RequiredCollateral(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]decimal.Decimal{
		"required_collateral": h.uc.RequiredCollateral(),
	})
}
