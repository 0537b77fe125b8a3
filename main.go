package main

import (
	"go.uber.org/zap"

	"github.com/cppla/qaforum/config"
	"github.com/cppla/qaforum/routes"
	"github.com/cppla/qaforum/store"
	"github.com/cppla/qaforum/thread"
	"github.com/cppla/qaforum/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db := config.InitDatabase(store.Models()...)
	st := store.New(db)
	engine := thread.NewEngine(st,
		thread.WithLogger(utils.Logger.Named("thread")),
		thread.WithLimits(cfg.ThreadMaxDepth, cfg.ThreadMaxNodes),
	)

	r := routes.SetupRouter(st, engine)

	utils.Logger.Info("starting server", zap.String("port", cfg.AppPort))
	err := utils.GraceServer(":"+cfg.AppPort, r, func() {
		if rc := utils.GetRedis(); rc != nil {
			_ = rc.Close()
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err != nil {
		utils.Logger.Fatal("server stopped with error", zap.Error(err))
	}
}
