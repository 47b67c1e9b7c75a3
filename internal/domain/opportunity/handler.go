package opportunity

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/revcycle/recovery/internal/domain/claims"
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
	api.GET("/opportunities/ranked", h.Ranked)
}

// Ranked accepts the claim filter options plus bucket, limit and offset.
// An unknown bucket is ignored.
func (h *Handler) Ranked(c echo.Context) error {
	bucket, _ := ParseBucket(c.QueryParam("bucket"))
	req := RankRequest{
		Predicates: claims.Compile(claims.OptionsFromValues(c.QueryParams())),
		Bucket:     bucket,
		Page:       pagination.FromContext(c, pagination.Ranking),
	}

	items, err := h.svc.Rank(c.Request().Context(), req)
	if err != nil {
		rid, _ := c.Get("request_id").(string)
		h.logger.Error().Err(err).Str("request_id", rid).Msg("rank opportunities failed")
		return echo.NewHTTPError(http.StatusInternalServerError, claims.ErrRetrieval.Error())
	}
	return c.JSON(http.StatusOK, items)
}
