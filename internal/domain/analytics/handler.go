package analytics

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/revcycle/recovery/internal/domain/claims"
	"github.com/revcycle/recovery/internal/platform/predicate"
	"github.com/revcycle/recovery/pkg/pagination"
)

type Handler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/summary/missing-money", h.MissingMoney)
	api.GET("/summary/recoverable", h.Recoverable)
	api.GET("/breakdown/payer", h.ByPayer)
	api.GET("/breakdown/cpt", h.ByCPT)
	api.GET("/trends/monthly", h.MonthlyTrend)
	api.GET("/claims/search", h.SearchClaims)
	api.GET("/dashboard", h.Dashboard)
}

// underpaidFilters compiles the request's filter options on top of the
// underpaid condition every summary view is restricted to.
func underpaidFilters(c echo.Context) predicate.Set {
	return claims.CompileWithBase(claims.OptionsFromValues(c.QueryParams()), claims.Underpaid())
}

func (h *Handler) retrievalFailed(c echo.Context, op string, err error) error {
	rid, _ := c.Get("request_id").(string)
	h.logger.Error().Err(err).
		Str("request_id", rid).
		Str("op", op).
		Msg("claims query failed")
	return echo.NewHTTPError(http.StatusInternalServerError, claims.ErrRetrieval.Error())
}

func (h *Handler) MissingMoney(c echo.Context) error {
	sum, err := h.svc.Summary(c.Request().Context(), underpaidFilters(c))
	if err != nil {
		return h.retrievalFailed(c, "summary", err)
	}
	return c.JSON(http.StatusOK, sum)
}

func (h *Handler) Recoverable(c echo.Context) error {
	rows, err := h.svc.Recoverable(c.Request().Context(), underpaidFilters(c))
	if err != nil {
		return h.retrievalFailed(c, "recoverable", err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *Handler) ByPayer(c echo.Context) error {
	rows, err := h.svc.ByPayer(c.Request().Context(), underpaidFilters(c))
	if err != nil {
		return h.retrievalFailed(c, "breakdown_payer", err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *Handler) ByCPT(c echo.Context) error {
	rows, err := h.svc.ByCPT(c.Request().Context(), underpaidFilters(c))
	if err != nil {
		return h.retrievalFailed(c, "breakdown_cpt", err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *Handler) MonthlyTrend(c echo.Context) error {
	rows, err := h.svc.MonthlyTrend(c.Request().Context(), underpaidFilters(c))
	if err != nil {
		return h.retrievalFailed(c, "trend_monthly", err)
	}
	return c.JSON(http.StatusOK, rows)
}

// SearchClaims lists claims matching the filters. Unlike the summary views it
// includes claims that were paid in full.
func (h *Handler) SearchClaims(c echo.Context) error {
	set := claims.Compile(claims.OptionsFromValues(c.QueryParams()))
	sort := claims.ParseSort(c.QueryParam("sort_by"), c.QueryParam("sort_dir"))
	page := pagination.FromContext(c, pagination.Search)

	rows, err := h.svc.Search(c.Request().Context(), set, sort, page)
	if err != nil {
		return h.retrievalFailed(c, "search", err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *Handler) Dashboard(c echo.Context) error {
	d, err := h.svc.Dashboard(c.Request().Context(), underpaidFilters(c))
	if err != nil {
		return h.retrievalFailed(c, "dashboard", err)
	}
	return c.JSON(http.StatusOK, d)
}
