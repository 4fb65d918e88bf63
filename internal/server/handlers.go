package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saurabhk79/TypeRush/internal/api"
	"github.com/saurabhk79/TypeRush/internal/model"
)

func (s *Server) routes(router *gin.Engine) {
	router.GET(api.RouteText, s.handleText)
	router.GET(api.RouteScore, s.handleListScores)
	router.POST(api.RouteScore, s.rateLimitMiddleware(), s.handleSubmitScore)
	router.POST(api.RouteGhost, s.rateLimitMiddleware(), s.handleSaveGhost)
	router.GET(api.RouteGhostByUser, s.handleGetGhost)
	router.GET(api.RouteHealth, s.handleHealth)
}

func (s *Server) handleText(c *gin.Context) {
	text, err := s.text.FetchText(c.Request.Context())
	if err != nil {
		s.logWarn("[request_id=%s] text source failed: %v", requestID(c.Request.Context()), err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch text"})
		return
	}
	c.JSON(http.StatusOK, api.TextResponse{Text: text})
}

func (s *Server) handleSubmitScore(c *gin.Context) {
	var req api.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid score: " + err.Error()})
		return
	}
	rec := req.Record()
	rec.RecordedAt = s.now()
	id, err := s.repo.InsertScore(c.Request.Context(), rec)
	if err != nil {
		s.logWarn("[request_id=%s] failed to save score: %v", requestID(c.Request.Context()), err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to save score"})
		return
	}
	s.logInfo("Saved score %s for %s: %d WPM", id, rec.Profile, rec.NetSpeed)
	c.JSON(http.StatusOK, api.ScoreResponse{Success: true, ID: id})
}

func (s *Server) handleListScores(c *gin.Context) {
	scores, err := s.repo.ListScores(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		s.logWarn("[request_id=%s] failed to list scores: %v", requestID(c.Request.Context()), err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to list scores"})
		return
	}
	if scores == nil {
		scores = []model.ScoreRecord{}
	}
	c.JSON(http.StatusOK, api.ScoreListResponse{Scores: scores})
}

func (s *Server) handleSaveGhost(c *gin.Context) {
	var req api.GhostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid ghost data: " + err.Error()})
		return
	}
	rec := req.Recording()
	rec.RecordedAt = s.now()
	if err := s.repo.SaveGhost(c.Request.Context(), req.UserID, rec); err != nil {
		s.logWarn("[request_id=%s] failed to save ghost: %v", requestID(c.Request.Context()), err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to save ghost data"})
		return
	}
	c.JSON(http.StatusOK, api.SuccessResponse{Success: true})
}

func (s *Server) handleGetGhost(c *gin.Context) {
	rec, err := s.repo.FetchGhost(c.Request.Context(), c.Param("userId"))
	if errors.Is(err, model.ErrGhostNotFound) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: api.ErrNoGhost})
		return
	}
	if err != nil {
		s.logWarn("[request_id=%s] failed to fetch ghost: %v", requestID(c.Request.Context()), err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch ghost data"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
