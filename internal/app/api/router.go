package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	calchttp "github.com/moneta-site/go-calculators-api/internal/domains/calculators/adapters/http"
	calcapp "github.com/moneta-site/go-calculators-api/internal/domains/calculators/application"
	enthttp "github.com/moneta-site/go-calculators-api/internal/domains/entitlements/adapters/http"
	entports "github.com/moneta-site/go-calculators-api/internal/domains/entitlements/ports"
	webhookhttp "github.com/moneta-site/go-calculators-api/internal/domains/webhooks/adapters/http"
	webhookapp "github.com/moneta-site/go-calculators-api/internal/domains/webhooks/application"
)

// RouterDeps holds the wired services the HTTP surface is built from.
type RouterDeps struct {
	Calculators  *calcapp.Service
	Entitlements entports.Service
	Processor    *webhookapp.Processor
	AccessURL    string
}

// NewRouter assembles the gin engine with tracing middleware and all route
// groups mounted.
func NewRouter(serviceName string, deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	calchttp.NewHandler(deps.Calculators, deps.Entitlements, deps.AccessURL).Register(v1)
	enthttp.NewHandler(deps.Entitlements, deps.AccessURL).Register(v1)
	webhookhttp.NewHandler(deps.Processor).Register(v1)

	return router
}
