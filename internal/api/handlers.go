package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"team-journal/internal/errors"
	"team-journal/internal/journal"
	"team-journal/internal/models"
	"team-journal/internal/review"
	"team-journal/internal/risk"
)

// MaxListLimit caps the page size of trade listings.
const MaxListLimit = 500

type displayNameRequest struct {
	DisplayName string `json:"display_name"`
}

type revisionRequest struct {
	Notes string `json:"notes"`
}

type activeRequest struct {
	Active *bool `json:"active"`
}

// riskResponse is the daily risk banner.
type riskResponse struct {
	risk.DailyRisk
	DisplayR   float64 `json:"display_r"`
	RemainingR float64 `json:"remaining_r"`
	LimitR     float64 `json:"limit_r"`
	ResetsAt   string  `json:"resets_at"`
}

func (s *Server) riskResponse(daily risk.DailyRisk) riskResponse {
	return riskResponse{
		DailyRisk:  daily,
		DisplayR:   daily.DisplayR(),
		RemainingR: daily.RemainingR(),
		LimitR:     risk.LockThresholdR,
		ResetsAt:   s.journal.NextReset().UTC().Format(time.RFC3339),
	}
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, errors.NewValidationError("body", "", "invalid JSON: "+err.Error()))
		return false
	}
	return true
}

// ============================================================================
// Profile
// ============================================================================

func (s *Server) getMe(c *gin.Context) {
	p, err := s.journal.Profile(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) updateMe(c *gin.Context) {
	var req displayNameRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := s.journal.UpdateDisplayName(c.Request.Context(), actorFrom(c), req.DisplayName)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) getMyRisk(c *gin.Context) {
	daily, err := s.journal.DailyRisk(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.riskResponse(daily))
}

func (s *Server) getMyStats(c *gin.Context) {
	overview, err := s.journal.UserOverview(c.Request.Context(), actorFrom(c), "")
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// ============================================================================
// Trades
// ============================================================================

func (s *Server) listTrades(c *gin.Context) {
	opts, err := listOptions(c)
	if err != nil {
		writeError(c, err)
		return
	}
	trades, err := s.journal.ListTrades(c.Request.Context(), actorFrom(c), opts)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trades": trades, "count": len(trades)})
}

func listOptions(c *gin.Context) (journal.ListOptions, error) {
	opts := journal.ListOptions{
		UserID:  c.Query("user_id"),
		Session: models.Session(c.Query("session")),
		Pair:    c.Query("pair"),
	}
	if v := c.Query("reviewed"); v != "" {
		reviewed, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.NewValidationError("reviewed", v, "must be true or false")
		}
		opts.Reviewed = &reviewed
	}
	if opts.Session != "" && !opts.Session.Valid() {
		return opts, errors.NewValidationError("session", opts.Session, "unknown session")
	}
	for key, dst := range map[string]*models.Date{"from": &opts.StartDate, "to": &opts.EndDate} {
		if v := c.Query(key); v != "" {
			d, err := models.ParseDate(v)
			if err != nil {
				return opts, errors.NewValidationError(key, v, "expected YYYY-MM-DD")
			}
			*dst = d
		}
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > MaxListLimit {
			return opts, errors.NewValidationError("limit", v, "must be between 1 and 500")
		}
		opts.Limit = limit
	}
	return opts, nil
}

func (s *Server) submitTrade(c *gin.Context) {
	var draft models.TradeDraft
	if !bindJSON(c, &draft) {
		return
	}
	trade, err := s.journal.SubmitTrade(c.Request.Context(), actorFrom(c), draft)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, trade)
}

func (s *Server) getTrade(c *gin.Context) {
	trade, err := s.journal.GetTrade(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, trade)
}

func (s *Server) editTrade(c *gin.Context) {
	var draft models.TradeDraft
	if !bindJSON(c, &draft) {
		return
	}
	trade, err := s.journal.EditTrade(c.Request.Context(), actorFrom(c), c.Param("id"), draft)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, trade)
}

func (s *Server) leaderboard(c *gin.Context) {
	entries, err := s.journal.Leaderboard(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// ============================================================================
// Mentor
// ============================================================================

func (s *Server) reviewQueue(c *gin.Context) {
	trades, err := s.journal.ReviewQueue(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trades": trades, "count": len(trades)})
}

func (s *Server) reviewTrade(c *gin.Context) {
	var in review.Input
	if !bindJSON(c, &in) {
		return
	}
	trade, err := s.journal.ReviewTrade(c.Request.Context(), actorFrom(c), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, trade)
}

func (s *Server) requestRevision(c *gin.Context) {
	var req revisionRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	trade, err := s.journal.RequestRevision(c.Request.Context(), actorFrom(c), c.Param("id"), req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, trade)
}

func (s *Server) teamOverview(c *gin.Context) {
	overview, err := s.journal.TeamOverview(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (s *Server) memberOverview(c *gin.Context) {
	rows, err := s.journal.MemberOverview(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": rows})
}

func (s *Server) setMemberActive(c *gin.Context) {
	var req activeRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Active == nil {
		writeError(c, errors.NewValidationError("active", nil, "active is required"))
		return
	}
	p, err := s.journal.SetMemberActive(c.Request.Context(), actorFrom(c), c.Param("id"), *req.Active)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) getUserStats(c *gin.Context) {
	overview, err := s.journal.UserOverview(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (s *Server) getUserRisk(c *gin.Context) {
	daily, err := s.journal.DailyRiskFor(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.riskResponse(daily))
}
