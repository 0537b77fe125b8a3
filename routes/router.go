package routes

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cppla/qaforum/config"
	"github.com/cppla/qaforum/controllers"
	"github.com/cppla/qaforum/middleware"
	"github.com/cppla/qaforum/store"
	"github.com/cppla/qaforum/thread"
	"github.com/cppla/qaforum/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(st *store.GormStore, engine *thread.Engine) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	// Access log goes to its own rolling file
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, true))
	} else {
		utils.Sugar.Warnf("access log disabled: %v", err)
		r.Use(utils.RecoveryWithZap(utils.Logger, true))
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", utils.RequestIDKey},
		ExposeHeaders:    []string{"Content-Length", utils.RequestIDKey},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		c, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		sqlDB, err := st.DB().DB()
		if err == nil {
			err = sqlDB.PingContext(c)
		}
		if err != nil {
			utils.Error(ctx, http.StatusServiceUnavailable, 50300, "database unavailable")
			return
		}
		utils.Success(ctx, gin.H{"status": "ok", "redis": utils.GetRedis() != nil})
	})

	authController := controllers.NewAuthController(st)
	questionController := controllers.NewQuestionController(st, engine)
	answerController := controllers.NewAnswerController(st, engine)
	reviewController := controllers.NewReviewController(st, engine)
	statsController := controllers.NewStatsController(st)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	// Public reads
	api.GET("/stats", statsController.GetStats)
	api.GET("/questions", questionController.ListQuestions)
	api.GET("/questions/:id", questionController.GetQuestion)
	api.GET("/questions/:id/thread", middleware.OptionalAuth(), middleware.QuestionViewRecorder(st), questionController.GetThread)
	api.GET("/questions/:id/potential-answers", questionController.PotentialAnswers)
	api.GET("/answers/:id/question", answerController.QuestionOf)
	api.GET("/reviews/:id/question", reviewController.QuestionOf)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	protected.GET("/questions/:id/read-state", questionController.ReadState)
	protected.POST("/questions", questionController.CreateQuestion)
	protected.PUT("/questions/:id", questionController.UpdateQuestion)
	protected.DELETE("/questions/:id", questionController.DeleteQuestion)
	protected.PUT("/questions/:id/preferred", questionController.SetPreferred)
	protected.POST("/questions/:id/answers", answerController.AnswerQuestion)
	protected.POST("/questions/:id/reviews", reviewController.ReviewQuestion)
	protected.POST("/answers/:id/replies", answerController.Reply)
	protected.POST("/answers/:id/reviews", reviewController.ReviewAnswer)
	protected.POST("/answers/:id/read", answerController.MarkRead)
	protected.DELETE("/answers/:id", answerController.DeleteAnswer)
	protected.POST("/reviews/:id/vote", reviewController.Vote)
	protected.DELETE("/reviews/:id", reviewController.DeleteReview)
	protected.PUT("/users/:id/role", authController.SetRole)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
