package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/qaforum/middleware"
	"github.com/cppla/qaforum/models"
	"github.com/cppla/qaforum/utils"
)

const listCachePrefix = "cache:questions:list:"

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

// parseID reads a positive numeric route parameter, writing a 400 on failure.
func parseID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(ctx.Param(name)), 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func getUserID(ctx *gin.Context) (uint, bool) {
	id, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
	}
	return id, ok
}

func isAdmin(ctx *gin.Context) bool {
	return middleware.CurrentRole(ctx) == models.RoleAdmin
}

func canModerate(ctx *gin.Context) bool {
	role := middleware.CurrentRole(ctx)
	return role == models.RoleModerator || role == models.RoleAdmin
}

// storeError maps a store or engine error onto the response envelope.
func storeError(ctx *gin.Context, err error, what string, fallbackCode int) {
	switch {
	case errors.Is(err, models.ErrInconsistentPreferredAnswer):
		utils.Error(ctx, http.StatusBadRequest, 40040, "answer does not belong to this question")
	case errors.Is(err, models.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40400, what+" not found")
	case errors.Is(err, models.ErrInvalidVote):
		utils.Error(ctx, http.StatusBadRequest, 40050, "delta must be 1 or -1")
	case errors.Is(err, models.ErrInvalidParent):
		utils.Error(ctx, http.StatusBadRequest, 40030, "answer must reply to exactly one question or answer")
	case errors.Is(err, models.ErrCycleDetected), errors.Is(err, models.ErrTraversalLimit):
		utils.Logger.Warn("thread integrity error", zap.String("path", ctx.Request.URL.Path), zap.Error(err))
		utils.Error(ctx, http.StatusConflict, 40940, "thread structure is inconsistent")
	default:
		utils.Logger.Error("request failed", zap.String("path", ctx.Request.URL.Path), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, fallbackCode, what+" request failed")
	}
}

func invalidateListings(ctx *gin.Context) {
	utils.InvalidateByPrefix(ctx.Request.Context(), listCachePrefix)
}
