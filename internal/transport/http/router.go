package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/sbekbolat/maglink/internal/transport/http/handler"
	"github.com/sbekbolat/maglink/internal/transport/http/middleware"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(logger *slog.Logger, auth *handler.AuthHandler, sessionKey []byte) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	r.POST("/auth/magic-link", auth.RequestMagicLink)
	r.POST("/auth/validate", auth.ValidateEmail)
	r.GET("/auth/redeem", auth.Redeem)
	r.GET("/auth/session", middleware.Session(sessionKey), auth.Session)

	return r
}
