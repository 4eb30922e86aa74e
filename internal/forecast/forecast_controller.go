package forecast

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/DhavalSuthar-24/miow-forecast/internal/bracket"
	"github.com/DhavalSuthar-24/miow-forecast/internal/common"
	"github.com/DhavalSuthar-24/miow-forecast/pkg/responses"
)

// ForecastController handles forecast HTTP requests
type ForecastController struct {
	service *Service
	logger  zerolog.Logger
}

func NewForecastController(service *Service, logger zerolog.Logger) *ForecastController {
	return &ForecastController{service: service, logger: logger}
}

// --- Helpers ---

func parseRunID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		responses.ErrorResponse(c, http.StatusBadRequest, "Invalid forecast ID")
		return uuid.Nil, false
	}
	return id, true
}

func parseFilter(c *gin.Context) (Filter, bool) {
	var f Filter
	if v := c.Query("scenario"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			responses.ErrorResponse(c, http.StatusBadRequest, "Invalid scenario")
			return f, false
		}
		f.Scenario = &n
	}
	if v := c.Query("match_key"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			responses.ErrorResponse(c, http.StatusBadRequest, "Invalid match_key")
			return f, false
		}
		f.MatchKey = &n
	}
	return f, true
}

// handleError maps service errors onto HTTP responses.
func (fc *ForecastController) handleError(c *gin.Context, err error) {
	var ve *bracket.ValidationError
	switch {
	case errors.As(err, &ve):
		fields := ve.Fields
		if fields == nil {
			fields = map[string]string{ve.Field: ve.Error()}
		}
		responses.FieldErrorResponse(c, ve.Error(), fields)
	case errors.Is(err, ErrRunNotFound):
		responses.NotFound(c, "Forecast")
	case errors.Is(err, ErrTemplateUnavailable):
		responses.ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		responses.ErrorResponse(c, http.StatusServiceUnavailable, "Forecast cancelled")
	default:
		fc.logger.Error().Err(err).Str("path", c.FullPath()).Msg("forecast request failed")
		responses.InternalServerError(c, "")
	}
}

// @Summary      Run a forecast
// @Description  Plays the tournament template across the requested number of scenarios and stores fixtures, standings, rewards and the ball log.
// @Tags         Forecasts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body  ForecastRequest  true  "Forecast request"
// @Success      201  {object}  Summary
// @Failure      400  {object}  map[string]interface{}  "Invalid request or template"
// @Failure      422  {object}  map[string]interface{}  "No template available"
// @Failure      500  {object}  map[string]interface{}
// @Router       /forecasts [post]
func (fc *ForecastController) CreateForecast(c *gin.Context) {
	var req ForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationErrorResponse(c, err)
		return
	}
	clientID, err := common.GetClientIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}

	summary, err := fc.service.Forecast(c.Request.Context(), clientID, req)
	if err != nil {
		fc.handleError(c, err)
		return
	}
	responses.SuccessResponse(c, http.StatusCreated, summary)
}

// @Summary      List my forecasts
// @Tags         Forecasts
// @Produce      json
// @Security     BearerAuth
// @Param        page       query  int  false  "Page number"  default(1)
// @Param        page_size  query  int  false  "Page size"    default(20)
// @Success      200  {object}  map[string]interface{}
// @Router       /forecasts [get]
func (fc *ForecastController) GetForecasts(c *gin.Context) {
	clientID, err := common.GetClientIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}
	page, pageSize := responses.Page(c, 20)
	runs, total, err := fc.service.Runs(c.Request.Context(), clientID, page, pageSize)
	if err != nil {
		fc.handleError(c, err)
		return
	}
	responses.PaginatedResponse(c, http.StatusOK, runs, page, pageSize, total)
}

// @Summary      Get a forecast summary
// @Tags         Forecasts
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Forecast ID"
// @Success      200  {object}  Summary
// @Failure      404  {object}  map[string]interface{}
// @Router       /forecasts/{id} [get]
func (fc *ForecastController) GetForecast(c *gin.Context) {
	id, ok := parseRunID(c)
	if !ok {
		return
	}
	summary, err := fc.service.Get(c.Request.Context(), id)
	if err != nil {
		fc.handleError(c, err)
		return
	}
	responses.SuccessResponse(c, http.StatusOK, summary)
}

// @Summary      Title odds of a forecast
// @Tags         Forecasts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path   string  true   "Forecast ID"
// @Param        top  query  int     false  "Teams to return"  default(10)
// @Success      200  {array}   cache.Odds
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /forecasts/{id}/odds [get]
func (fc *ForecastController) GetOdds(c *gin.Context) {
	id, ok := parseRunID(c)
	if !ok {
		return
	}
	n, err := strconv.Atoi(c.DefaultQuery("top", "10"))
	if err != nil || n < 1 {
		responses.ErrorResponse(c, http.StatusBadRequest, "Invalid top")
		return
	}
	odds, err := fc.service.Odds(c.Request.Context(), id, n)
	if err != nil {
		fc.handleError(c, err)
		return
	}
	responses.SuccessResponse(c, http.StatusOK, odds)
}

// @Summary      List simulated fixtures
// @Tags         Forecasts
// @Produce      json
// @Security     BearerAuth
// @Param        id         path   string  true   "Forecast ID"
// @Param        scenario   query  int     false  "Only this scenario"
// @Param        page       query  int     false  "Page number"  default(1)
// @Param        page_size  query  int     false  "Page size"    default(50)
// @Success      200  {object}  map[string]interface{}
// @Router       /forecasts/{id}/fixtures [get]
func (fc *ForecastController) GetFixtures(c *gin.Context) {
	id, ok := parseRunID(c)
	if !ok {
		return
	}
	f, ok := parseFilter(c)
	if !ok {
		return
	}
	page, pageSize := responses.Page(c, 50)
	rows, total, err := fc.service.Fixtures(c.Request.Context(), id, f, page, pageSize)
	if err != nil {
		fc.handleError(c, err)
		return
	}
	responses.PaginatedResponse(c, http.StatusOK, rows, page, pageSize, total)
}

// @Summary      List group standings per scenario
// @Tags         Forecasts
// @Produce      json
// @Security     BearerAuth
// @Param        id         path   string  true   "Forecast ID"
// @Param        scenario   query  int     false  "Only this scenario"
// @Param        page       query  int     false  "Page number"  default(1)
// @Param        page_size  query  int     false  "Page size"    default(20)
// @Success      200  {object}  map[string]interface{}
// @Router       /forecasts/{id}/standings [get]
func (fc *ForecastController) GetStandings(c *gin.Context) {
	id, ok := parseRunID(c)
	if !ok {
		return
	}
	f, ok := parseFilter(c)
	if !ok {
		return
	}
	page, pageSize := responses.Page(c, 20)
	rows, total, err := fc.service.Standings(c.Request.Context(), id, f, page, pageSize)
	if err != nil {
		fc.handleError(c, err)
		return
	}
	responses.PaginatedResponse(c, http.StatusOK, rows, page, pageSize, total)
}

// @Summary      List player rewards ranked by mean points
// @Tags         Forecasts
// @Produce      json
// @Security     BearerAuth
// @Param        id         path   string  true   "Forecast ID"
// @Param        page       query  int     false  "Page number"  default(1)
// @Param        page_size  query  int     false  "Page size"    default(50)
// @Success      200  {object}  map[string]interface{}
// @Router       /forecasts/{id}/rewards [get]
func (fc *ForecastController) GetRewards(c *gin.Context) {
	id, ok := parseRunID(c)
	if !ok {
		return
	}
	page, pageSize := responses.Page(c, 50)
	rows, total, err := fc.service.Rewards(c.Request.Context(), id, page, pageSize)
	if err != nil {
		fc.handleError(c, err)
		return
	}
	responses.PaginatedResponse(c, http.StatusOK, rows, page, pageSize, total)
}

// @Summary      Page through the ball-by-ball log
// @Tags         Forecasts
// @Produce      json
// @Security     BearerAuth
// @Param        id         path   string  true   "Forecast ID"
// @Param        scenario   query  int     false  "Only this scenario"
// @Param        match_key  query  int     false  "Only this match"
// @Param        page       query  int     false  "Page number"  default(1)
// @Param        page_size  query  int     false  "Page size"    default(100)
// @Success      200  {object}  map[string]interface{}
// @Router       /forecasts/{id}/balls [get]
func (fc *ForecastController) GetBalls(c *gin.Context) {
	id, ok := parseRunID(c)
	if !ok {
		return
	}
	f, ok := parseFilter(c)
	if !ok {
		return
	}
	page, pageSize := responses.Page(c, 100)
	rows, total, err := fc.service.Balls(c.Request.Context(), id, f, page, pageSize)
	if err != nil {
		fc.handleError(c, err)
		return
	}
	responses.PaginatedResponse(c, http.StatusOK, rows, page, pageSize, total)
}
