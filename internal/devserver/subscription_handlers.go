package devserver

import (
	"net/http"

	"lovedu_client/internal/models"

	"github.com/gin-gonic/gin"
)

type planLimits struct {
	tokens   int64
	pdfs     int
	images   int
	price    float64
	hasPrice bool
}

var planTable = map[models.PlanTier]planLimits{
	models.PlanFree:  {tokens: 10000, pdfs: 1, images: 0},
	models.PlanBasic: {tokens: 100000, pdfs: 5, images: 10, price: 4.99, hasPrice: true},
	models.PlanPro:   {tokens: 1000000, pdfs: 50, images: 100, price: 14.99, hasPrice: true},
}

func planInfo(tier models.PlanTier) models.PlanInfo {
	limits := planTable[tier]
	info := models.PlanInfo{
		Plan:             tier,
		TokensLimit:      limits.tokens,
		PDFUploadsPerDay: limits.pdfs,
		ImagesPerDay:     limits.images,
		TokensRemaining:  limits.tokens,
	}
	if limits.hasPrice {
		price := limits.price
		info.PricePerMonth = &price
	}
	return info
}

func (s *Server) plan(c *gin.Context) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	c.JSON(http.StatusOK, planInfo(currentAccount(c).plan))
}

func (s *Server) upgrade(c *gin.Context) {
	var req models.PlanChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.Plan != models.PlanBasic && req.Plan != models.PlanPro) {
		abortDetail(c, http.StatusBadRequest, "Invalid plan")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	acc := currentAccount(c)
	acc.plan = req.Plan
	c.JSON(http.StatusOK, planInfo(acc.plan))
}

func (s *Server) downgrade(c *gin.Context) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	acc := currentAccount(c)
	acc.plan = models.PlanFree
	c.JSON(http.StatusOK, planInfo(acc.plan))
}
