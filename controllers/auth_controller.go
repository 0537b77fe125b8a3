package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/qaforum/config"
	"github.com/cppla/qaforum/middleware"
	"github.com/cppla/qaforum/models"
	"github.com/cppla/qaforum/store"
	"github.com/cppla/qaforum/utils"
)

// AuthController handles local registration, login and role management.
type AuthController struct {
	store *store.GormStore
}

// NewAuthController creates an AuthController over st.
func NewAuthController(st *store.GormStore) *AuthController {
	return &AuthController{store: st}
}

// Register handles local account registration with bcrypt hashing.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		Confirm  string `json:"confirm"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if l := len([]rune(req.Username)); l < 2 || l > 32 {
		utils.Error(ctx, http.StatusBadRequest, 40002, "username must be 2 to 32 characters")
		return
	}
	if !validUsername(req.Username) {
		utils.Error(ctx, http.StatusBadRequest, 40002, "username may only contain letters, digits, '-' and '_'")
		return
	}
	if req.Confirm != "" && req.Password != req.Confirm {
		utils.Error(ctx, http.StatusBadRequest, 40002, "passwords do not match")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if errors.Is(err, utils.ErrWeakPassword) {
		utils.Error(ctx, http.StatusBadRequest, 40002, err.Error())
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}

	user := models.User{Username: req.Username, PasswordHash: hash, Role: models.RoleMember}
	if config.Get().IsAdminUsername(user.Username) {
		user.Role = models.RoleAdmin
	}
	if err := a.store.CreateUser(ctx.Request.Context(), &user); err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			utils.Error(ctx, http.StatusConflict, 40901, "username already exists")
			return
		}
		storeError(ctx, err, "register", 50002)
		return
	}

	a.issueToken(ctx, user, 50003)
}

func validUsername(s string) bool {
	for _, r := range s {
		if r == '-' || r == '_' {
			continue
		}
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		return false
	}
	return true
}

// Login verifies user credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	user, err := a.store.FindUserByUsername(ctx.Request.Context(), strings.TrimSpace(req.Username))
	if err != nil || !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}

	a.issueToken(ctx, *user, 50004)
}

func (a *AuthController) issueToken(ctx *gin.Context, user models.User, failCode int) {
	token, expires, err := utils.GenerateToken(user.ID, user.Username, user.Role, 0)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, failCode, "failed to generate token")
		return
	}
	utils.Success(ctx, gin.H{
		"token":      token,
		"expires_at": expires,
		"user":       user,
	})
}

// Logout invalidates the token by blacklisting it until expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	token := ctx.GetString(middleware.ContextTokenKey)
	expiresAt := time.Now().Add(time.Duration(config.Get().JWTExpireHours) * time.Hour)
	if v, ok := ctx.Get(middleware.ContextTokenExpiryKey); ok {
		if t, ok := v.(time.Time); ok {
			expiresAt = t
		}
	}
	utils.BlacklistToken(ctx.Request.Context(), token, expiresAt)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated user.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		return
	}
	user, err := a.store.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		storeError(ctx, err, "user", 50005)
		return
	}
	utils.Success(ctx, user)
}

// SetRole lets an admin promote or demote a user. The new role applies to
// tokens issued afterwards.
func (a *AuthController) SetRole(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40310, "admin role required")
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, "invalid request payload")
		return
	}
	switch req.Role {
	case models.RoleMember, models.RoleModerator, models.RoleAdmin:
	default:
		utils.Error(ctx, http.StatusBadRequest, 40005, "unknown role")
		return
	}
	user, err := a.store.SetUserRole(ctx.Request.Context(), id, req.Role)
	if err != nil {
		storeError(ctx, err, "user", 50006)
		return
	}
	utils.Success(ctx, user)
}
