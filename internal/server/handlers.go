package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/njchilds90/mathgrade"
)

type equivalenceRequest struct {
	Expr1 *string `json:"expr1"`
	Expr2 *string `json:"expr2"`
}

type equivalenceResponse struct {
	Equivalent      bool           `json:"equivalent"`
	Expr1           string         `json:"expr1"`
	Expr2           string         `json:"expr2"`
	Expr1Normalized string         `json:"expr1_normalized"`
	Expr2Normalized string         `json:"expr2_normalized"`
	Tier            mathgrade.Tier `json:"tier"`
}

type normalizeRequest struct {
	Expression *string `json:"expression"`
}

type normalizeResponse struct {
	Original   string                 `json:"original"`
	Normalized string                 `json:"normalized"`
	LaTeX      string                 `json:"latex"`
	Strategy   string                 `json:"strategy"`
	Tree       map[string]interface{} `json:"tree,omitempty"`
}

// testEquivalence handles POST /api/math/test-equivalence.
func (s *Server) testEquivalence(c *gin.Context) {
	var req equivalenceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Expr1 == nil || req.Expr2 == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: expr1 and expr2"})
		return
	}
	ctx := c.Request.Context()
	v := s.engine.Compare(ctx, *req.Expr1, *req.Expr2)
	c.JSON(http.StatusOK, equivalenceResponse{
		Equivalent:      v.Equivalent,
		Expr1:           *req.Expr1,
		Expr2:           *req.Expr2,
		Expr1Normalized: s.engine.Normalize(ctx, *req.Expr1),
		Expr2Normalized: s.engine.Normalize(ctx, *req.Expr2),
		Tier:            v.Tier,
	})
}

// normalize handles POST /api/math/normalize.
func (s *Server) normalize(c *gin.Context) {
	var req normalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Expression == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required field: expression"})
		return
	}
	a := s.engine.Analyze(c.Request.Context(), *req.Expression)
	c.JSON(http.StatusOK, normalizeResponse{
		Original:   *req.Expression,
		Normalized: a.Normalized,
		LaTeX:      a.LaTeX,
		Strategy:   a.Strategy,
		Tree:       a.Tree,
	})
}

// tool handles POST /tool.
func (s *Server) tool(c *gin.Context) {
	var req mathgrade.ToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Debug("bad tool request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.engine.HandleToolCall(c.Request.Context(), req))
}

// schema handles GET /schema.
func (s *Server) schema(c *gin.Context) {
	c.Data(http.StatusOK, "application/json", []byte(mathgrade.ToolSpec()))
}

// health handles GET /health.
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
