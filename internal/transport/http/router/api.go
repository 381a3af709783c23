package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	coreauth "go-foodserve-api/internal/core/auth"
	"go-foodserve-api/internal/core/cache"
	authfeat "go-foodserve-api/internal/feature/auth"
	mdw "go-foodserve-api/internal/transport/http/middleware"
)

// NewAPIEngine 用户端引擎：/api/v1 下挂认证与地理数据接口
func NewAPIEngine(l *zap.Logger, db *gorm.DB, jwter *coreauth.JWTer, svc *authfeat.Service, cc *cache.Cache) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimitPerIP(rate.Limit(10.0/60.0), 10), // 10 次/60 秒
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(l, true),
		cors.Default(),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	api := r.Group("/api/v1")

	// 鉴权分组
	authed := api.Group("")
	authed.Use(mdw.AuthJWT(jwter, ""))

	mountAuthActions(api, authed, svc)
	mountGeoActions(api, authed, db, cc)

	return r
}
