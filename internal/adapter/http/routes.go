package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Handlers struct {
	Health       *Handler
	Bank         *BankHandler
	Participants *ParticipantHandler
	Loans        *LoanHandler
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

// Register mounts the API. mutating wraps every POST route, typically with
// the idempotency middleware.
func Register(e *echo.Echo, h Handlers, mutating ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)
	if h.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(h.Metrics))
	}

	e.POST("/bank", h.Bank.Initialize, mutating...)
	e.GET("/bank", h.Bank.Get)

	e.POST("/participants", h.Participants.Onboard, mutating...)
	e.GET("/participants", h.Participants.List)
	e.GET("/participants/:id", h.Participants.Get)
	e.GET("/participants/:id/loans", h.Participants.Loans)

	e.POST("/loans", h.Loans.Issue, mutating...)
	e.GET("/loans", h.Loans.List)
	e.POST("/loans/sweep", h.Loans.Sweep, mutating...)
	e.POST("/loans/reconcile", h.Loans.Reconcile, mutating...)
	e.GET("/loans/:id", h.Loans.Get)
	e.POST("/loans/:id/repayments", h.Loans.Repay, mutating...)
}

// RequestLogger logs one slog line per request.
func RequestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if v.RequestID != "" {
				attrs = append(attrs, slog.String("request_id", v.RequestID))
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("err", v.Error.Error()))
			}
			log.LogAttrs(context.Background(), level, "request", attrs...)
			return nil
		},
	})
}
