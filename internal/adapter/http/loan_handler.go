package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"creditnexus/internal/usecase/loan"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type issueLoanReq struct {
	BorrowerID   uint64          `json:"borrower_id" validate:"required"`
	CoBorrowerID *uint64         `json:"co_borrower_id" validate:"omitempty,gte=1"`
	Principal    decimal.Decimal `json:"principal" validate:"dec6,int18"`
	// up to one year
	TermMinutes int `json:"term_minutes" validate:"required,gte=1,lte=525600"`
}

type repaymentReq struct {
	Amount decimal.Decimal `json:"amount" validate:"dec6,int18"`
	PaidAt *time.Time      `json:"paid_at"`
}

func (h *LoanHandler) Issue(c echo.Context) error {
	var req issueLoanReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Issue(c.Request().Context(), loan.IssueLoanInput{
		BorrowerID:   req.BorrowerID,
		CoBorrowerID: req.CoBorrowerID,
		Principal:    req.Principal,
		Term:         time.Duration(req.TermMinutes) * time.Minute,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) Repay(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return invalidID(c)
	}
	var req repaymentReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Repay(c.Request().Context(), loan.RepaymentInput{LoanID: id, Amount: req.Amount, PaidAt: req.PaidAt})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return invalidID(c)
	}
	dto, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) List(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LoanHandler) Reconcile(c echo.Context) error {
	res, err := h.uc.Reconcile(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *LoanHandler) Sweep(c echo.Context) error {
	res, err := h.uc.SweepNow(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
