package api

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"SeasonEdge/internal/domain/models"
	"SeasonEdge/internal/export"
	"SeasonEdge/internal/usecase"
	"SeasonEdge/pkg/config"
	xhttp "SeasonEdge/pkg/http"
	xlogger "SeasonEdge/pkg/logger"
	"SeasonEdge/pkg/util"

	"github.com/labstack/echo/v4"
)

// AnalyzeRequest is the full-run request body. The options block is
// optional; omitted fields fall back to the server defaults.
type AnalyzeRequest struct {
	Symbol  string           `json:"symbol" query:"symbol" validate:"required"`
	From    string           `json:"from" query:"from"`
	To      string           `json:"to" query:"to"`
	Options *config.Analysis `json:"options,omitempty"`
}

// ExportRequest selects which table of the result to render as CSV.
type ExportRequest struct {
	Symbol string `json:"symbol" query:"symbol" validate:"required"`
	From   string `json:"from" query:"from"`
	To     string `json:"to" query:"to"`
	Table  string `json:"table" query:"table" default:"monthly" validate:"oneof=monthly findings regimes breaks"`
}

// BackfillRequest loads a batch of daily bars for one symbol.
type BackfillRequest struct {
	Symbol string `json:"symbol" validate:"required"`
	Bars   []Bar  `json:"bars" validate:"required,min=1,dive"`
}

// Bar is one daily OHLCV row in a backfill payload.
type Bar struct {
	Date   string  `json:"date" validate:"required"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close" validate:"required,gt=0"`
	Volume float64 `json:"volume"`
}

// AnalysisHandler exposes the engine over HTTP.
type AnalysisHandler struct {
	logger *xlogger.Logger
	engine *usecase.Engine
}

func NewAnalysisHandler(logger *xlogger.Logger, engine *usecase.Engine) *AnalysisHandler {
	return &AnalysisHandler{logger: logger, engine: engine}
}

func (h *AnalysisHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/analyze", h.Analyze)
	g.GET("/seasonal", h.Seasonal)
	g.GET("/export/csv", h.ExportCSV)
	g.POST("/candles", h.Backfill)
	g.DELETE("/cache", h.InvalidateCache)
	e.GET("/healthz", h.Health)
}

func (h *AnalysisHandler) Analyze(c echo.Context) error {
	req := &AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.run(c, req)
	if err != nil {
		return h.fail(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// Seasonal returns only the calendar stat tables, a cheaper view of the
// same run.
func (h *AnalysisHandler) Seasonal(c echo.Context) error {
	req := &AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.run(c, req)
	if err != nil {
		return h.fail(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"symbol":          res.Symbol,
		"monthly_stats":   res.MonthlyStats,
		"quarterly_stats": res.QuarterlyStats,
		"weekday_stats":   res.WeekdayStats,
	})
}

func (h *AnalysisHandler) ExportCSV(c echo.Context) error {
	req := &ExportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.run(c, &AnalyzeRequest{Symbol: req.Symbol, From: req.From, To: req.To})
	if err != nil {
		return h.fail(c, err)
	}

	var buf bytes.Buffer
	switch req.Table {
	case "findings":
		err = export.WriteFindings(&buf, res.Findings)
	case "regimes":
		err = export.WriteRegimes(&buf, res.Regimes)
	case "breaks":
		err = export.WriteBreaks(&buf, res.Breaks)
	default:
		err = export.WriteMonthlyStats(&buf, res.MonthlyStats)
	}
	if err != nil {
		h.logger.Error("csv export failed", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="`+req.Symbol+`_`+req.Table+`.csv"`)
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}

// Backfill stores a batch of bars and invalidates the symbol's cached
// runs so the next analysis sees them.
func (h *AnalysisHandler) Backfill(c echo.Context) error {
	req := &BackfillRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	candles := make([]models.Candle, 0, len(req.Bars))
	for _, b := range req.Bars {
		date, ok := util.ParseTime(b.Date)
		if !ok {
			return xhttp.BadRequestResponse(c, "unparseable bar date "+b.Date)
		}
		candles = append(candles, models.Candle{
			Date: util.TruncateToDay(date), Symbol: req.Symbol,
			Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume,
		})
	}

	if err := h.engine.Backfill(c.Request().Context(), candles); err != nil {
		return h.fail(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"symbol": req.Symbol,
		"stored": len(candles),
	})
}

// InvalidateCache drops every cached run for a symbol, used after a
// data backfill rewrites its history.
func (h *AnalysisHandler) InvalidateCache(c echo.Context) error {
	symbol := c.QueryParam("symbol")
	if symbol == "" {
		return xhttp.BadRequestResponse(c, "symbol is required")
	}
	if err := h.engine.Invalidate(c.Request().Context(), symbol); err != nil {
		h.logger.Error("cache invalidation failed", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.SuccessResponse(c, map[string]string{"symbol": symbol, "status": "invalidated"})
}

func (h *AnalysisHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *AnalysisHandler) run(c echo.Context, req *AnalyzeRequest) (*models.AnalysisResult, error) {
	return h.engine.Analyze(c.Request().Context(), usecase.Request{
		Symbol:  req.Symbol,
		From:    util.ParseTimeDefault(req.From, time.Time{}),
		To:      util.ParseTimeDefault(req.To, time.Time{}),
		Options: req.Options,
	})
}

func (h *AnalysisHandler) fail(c echo.Context, err error) error {
	var ide *models.InsufficientDataError
	var cfg *models.ConfigurationError
	switch {
	case errors.As(err, &ide):
		return xhttp.BadRequestResponse(c, err.Error())
	case errors.As(err, &cfg):
		return xhttp.BadRequestResponse(c, err.Error())
	default:
		h.logger.Error("analysis failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
}
