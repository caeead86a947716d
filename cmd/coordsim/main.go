package main

import (
	"flag"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/grouplink/internal/config"
	"github.com/danmuck/grouplink/internal/coordsim"
	"github.com/danmuck/grouplink/internal/observability"
)

func main() {
	configPath := flag.String("config", "cmd/coordsim/config.toml", "path to the coordsim TOML config")
	flag.Parse()
	observability.InitLogger("coordsim")

	cfg, err := config.LoadCoordinatorConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load coordsim config")
	}
	log.Info().Str("path", *configPath).Msg("loaded coordsim config")

	server := coordsim.New(coordsim.Config{
		Network: cfg.Network,
		Address: cfg.Address,
	})
	if err := server.Listen(); err != nil {
		log.Fatal().Err(err).Msg("coordinator listen failed")
	}

	router := adminRouter(server, cfg.CorsOrigins)
	go func() {
		log.Info().Str("addr", cfg.AdminAddr).Msg("admin surface started")
		if err := router.Run(cfg.AdminAddr); err != nil {
			log.Fatal().Err(err).Msg("admin surface stopped")
		}
	}()

	log.Info().Str("addr", server.Addr().String()).Msg("coordsim started")
	if err := server.Serve(); err != nil {
		log.Fatal().Err(err).Msg("coordsim stopped")
	}
}

func adminRouter(server *coordsim.Server, corsOrigins []string) *gin.Engine {
	observability.RegisterMetrics()
	started := time.Now()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware("coordsim"))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(corsOrigins),
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(started).String(),
			"service": "coordsim",
		})
	})
	r.GET("/groups", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"groups": server.Groups(),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
