package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/qaforum/store"
	"github.com/cppla/qaforum/utils"
)

// StatsController provides forum statistics.
type StatsController struct {
	store *store.GormStore
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(st *store.GormStore) *StatsController {
	return &StatsController{store: st}
}

// GetStats returns aggregate counts and today's thread views.
func (s *StatsController) GetStats(ctx *gin.Context) {
	utils.Success(ctx, s.store.CountContent(ctx.Request.Context()))
}
