package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"creditnexus/internal/domain/transfer"
)

// BankState reports whether the bank account has been opened.
type BankState interface {
	Credential() (transfer.Credential, error)
}

type Handler struct {
	bank BankState
}

func NewHandler(bank BankState) *Handler { return &Handler{bank: bank} }

// Health stays 200 before the bank exists; bank_initialized tells callers
// whether loans can be issued yet.
func (h *Handler) Health(c echo.Context) error {
	_, err := h.bank.Credential()
	return c.JSON(http.StatusOK, map[string]any{
		"status":           "ok",
		"time":             time.Now().UTC().Format(time.RFC3339Nano),
		"bank_initialized": err == nil,
	})
}
