package history

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/DhavalSuthar-24/miow-forecast/pkg/responses"
)

// HistoryController handles ingestion and browsing of historical matches.
type HistoryController struct {
	repo   Repository
	source *Source
	logger zerolog.Logger
}

func NewHistoryController(repo Repository, source *Source, logger zerolog.Logger) *HistoryController {
	return &HistoryController{repo: repo, source: source, logger: logger}
}

// @Summary      Ingest a historical match
// @Description  Store a completed match ball by ball. Unknown venues, teams and players are created. The fitted catalog is refreshed on the next forecast.
// @Tags         History
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        match  body  MatchInput  true  "Match with deliveries"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /history/matches [post]
func (hc *HistoryController) IngestMatch(c *gin.Context) {
	var req MatchInput
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationErrorResponse(c, err)
		return
	}

	m, err := Ingest(c.Request.Context(), hc.repo, req)
	if err != nil {
		if errors.Is(err, ErrInvalidMatch) {
			responses.ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		hc.logger.Error().Err(err).Msg("failed to ingest match")
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to store match")
		return
	}
	hc.source.Invalidate()

	responses.SuccessResponse(c, http.StatusCreated, gin.H{
		"message":    "Match stored",
		"id":         m.ID,
		"deliveries": len(m.Deliveries),
	})
}

// @Summary      List historical matches
// @Tags         History
// @Produce      json
// @Security     BearerAuth
// @Param        page       query  int  false  "Page number"  default(1)
// @Param        page_size  query  int  false  "Page size"    default(20)
// @Success      200  {object}  map[string]interface{}
// @Router       /history/matches [get]
func (hc *HistoryController) GetMatches(c *gin.Context) {
	page, pageSize := responses.Page(c, 20)
	matches, total, err := hc.repo.GetMatches(c.Request.Context(), page, pageSize)
	if err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve matches: "+err.Error())
		return
	}
	responses.PaginatedResponse(c, http.StatusOK, matches, page, pageSize, total)
}

// @Summary      Get a historical match with its deliveries
// @Tags         History
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Match ID"
// @Success      200  {object}  HistoricalMatch
// @Failure      404  {object}  map[string]interface{}
// @Router       /history/matches/{id} [get]
func (hc *HistoryController) GetMatchByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		responses.ErrorResponse(c, http.StatusBadRequest, "Invalid match ID")
		return
	}
	m, err := hc.repo.GetMatchByID(c.Request.Context(), uint(id))
	if err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve match: "+err.Error())
		return
	}
	if m == nil {
		responses.NotFound(c, "Match")
		return
	}
	responses.SuccessResponse(c, http.StatusOK, m)
}

// @Summary      Count the known venues, teams and players
// @Tags         History
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  UniverseResponse
// @Router       /history/universe [get]
func (hc *HistoryController) GetUniverse(c *gin.Context) {
	u, err := hc.source.Universe(c.Request.Context())
	if err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	responses.SuccessResponse(c, http.StatusOK, UniverseResponse{
		Venues:  len(u.Venues),
		Teams:   len(u.Teams),
		Players: len(u.Players),
	})
}
