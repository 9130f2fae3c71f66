package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"creditnexus/internal/usecase/loan"
	"creditnexus/internal/usecase/participant"
)

type ParticipantHandler struct {
	uc    *participant.Usecase
	loans *loan.Usecase
}

func NewParticipantHandler(uc *participant.Usecase, loans *loan.Usecase) *ParticipantHandler {
	return &ParticipantHandler{uc: uc, loans: loans}
}

func (h *ParticipantHandler) Onboard(c echo.Context) error {
	dto, err := h.uc.Onboard(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ParticipantHandler) Get(c echo.Context) error {
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

func (h *ParticipantHandler) List(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ParticipantHandler) Loans(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return invalidID(c)
	}
	out, err := h.loans.ListByParticipant(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
