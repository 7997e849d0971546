// Package http wires the gin router: the WS mount, the room listing and
// the account API that mints the bearer tokens the sync engine consumes.
package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/evhenko/tunesync/internal/adapters/signal"
	"github.com/evhenko/tunesync/internal/config"
)

// CORSMiddleware reflects the origin so browsers can read error bodies
// cross-origin, the same contract the websocket upgrader follows.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			origin = "*"
		}
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, ws *signal.Controller, api *API) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(CORSMiddleware())

	r.GET("/ws", func(c *gin.Context) {
		ws.HandleWS(ctx, c)
	})

	r.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, ws.Registry.Summaries(""))
	})

	g := r.Group("/api")
	g.POST("/register", api.Register)
	g.GET("/verify", api.Verify)
	g.POST("/login", api.Login)
	g.GET("/logout", api.Logout)
	g.GET("/me", api.Me)
	g.GET("/profile", api.GetProfile)
	g.POST("/profile", api.UpdateProfile)

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
