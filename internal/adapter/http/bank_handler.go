package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"creditnexus/internal/usecase/bank"
)

type BankHandler struct{ uc *bank.Usecase }

func NewBankHandler(uc *bank.Usecase) *BankHandler { return &BankHandler{uc: uc} }

// Initialize answers 201 with the secret on first call, 200 afterwards.
func (h *BankHandler) Initialize(c echo.Context) error {
	dto, created, err := h.uc.Initialize(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	if created {
		return c.JSON(http.StatusCreated, dto)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *BankHandler) Get(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
