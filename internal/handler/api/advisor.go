package api

import (
	"AlgoSensei/internal/domain/models"
	"AlgoSensei/internal/usecase"
	xhttp "AlgoSensei/pkg/http"

	"github.com/labstack/echo/v4"
)

// AdvisorHandler exposes the strategy advisor. It always answers 200: provider
// failures degrade to the keyword fallback with a notice.
type AdvisorHandler struct {
	advisor *usecase.Advisor
}

func NewAdvisorHandler(advisor *usecase.Advisor) *AdvisorHandler {
	return &AdvisorHandler{advisor: advisor}
}

func (h *AdvisorHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/advisor")
	g.POST("/strategy", h.Strategy)
	g.POST("/backtest", h.Backtest)
}

func (h *AdvisorHandler) Strategy(c echo.Context) error {
	req := &models.StrategyAdviceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.advisor.StrategyAdvice(c.Request().Context(), req.MarketCondition, req.CurrentStrategy))
}

func (h *AdvisorHandler) Backtest(c echo.Context) error {
	req := &models.BacktestAnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.advisor.AnalyzeBacktest(c.Request().Context(), req.Results))
}
