// Package v1 exposes the intake API over HTTP.
package v1

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/medassist/internal/config"
	"github.com/dmehra2102/prod-golang-projects/medassist/internal/service"
	"github.com/dmehra2102/prod-golang-projects/medassist/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/medassist/pkg/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Dependencies struct {
	Config    *config.Config
	Diagnosis *service.DiagnosisService
	Patients  *service.PatientService
	Pharmacy  *service.PharmacyService
	Auth      *service.AuthService
	JWT       *auth.JWTManager
	Metrics   *metrics.Collector
	DB        HealthChecker // nil when the database is disabled
	Log       *zap.Logger
}

func NewRouter(d Dependencies) *gin.Engine {
	cfg := d.Config
	h := &handlers{
		diagnosis: d.Diagnosis,
		patients:  d.Patients,
		pharmacy:  d.Pharmacy,
		auth:      d.Auth,
		db:        d.DB,
		version:   cfg.App.Version,
	}

	router := gin.New()
	router.Use(
		gin.CustomRecovery(func(c *gin.Context, _ any) {
			respondError(c, http.StatusInternalServerError, "internal server error")
		}),
		requestID(),
		requestLogger(d.Log),
		tracing(),
		instrument(d.Metrics),
		limitBodySize(cfg.Server.MaxBodyBytes),
		cors.New(cors.Config{
			AllowOrigins:  cfg.CORS.AllowedOrigins,
			AllowMethods:  cfg.CORS.AllowedMethods,
			AllowHeaders:  cfg.CORS.AllowedHeaders,
			ExposeHeaders: []string{requestIDHeader},
			MaxAge:        cfg.CORS.MaxAge,
		}),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	api := router.Group("/api")
	api.GET("/health", h.health)

	limited := api.Group("", rateLimit(newIPLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize), d.Metrics))
	{
		limited.POST("/patients", optionalAuth(d.JWT), h.registerPatient)
		limited.POST("/diagnose", h.diagnose)
		limited.POST("/drug-interactions/check", h.checkInteractions)
		limited.POST("/dosage/calculate", h.calculateDosage)
		limited.POST("/auth/login", h.login)
		limited.POST("/auth/refresh", h.refresh)
		limited.GET("/history/:patient_id", requireAuth(d.JWT), h.history)
	}

	router.NoRoute(notFound(staticRoot(cfg.App.StaticDir)))
	return router
}

// staticRoot returns dir if it holds the intake frontend, else "".
func staticRoot(dir string) string {
	if dir == "" {
		return ""
	}
	info, err := os.Stat(filepath.Join(dir, "index.html"))
	if err != nil || info.IsDir() {
		return ""
	}
	return dir
}

// notFound serves frontend files for GET requests outside /api and a JSON
// error for everything else.
func notFound(root string) gin.HandlerFunc {
	var files http.Handler
	if root != "" {
		files = http.FileServer(http.Dir(root))
	}
	return func(c *gin.Context) {
		if files != nil && c.Request.Method == http.MethodGet && !strings.HasPrefix(c.Request.URL.Path, "/api/") {
			files.ServeHTTP(c.Writer, c.Request)
			return
		}
		respondError(c, http.StatusNotFound, "resource not found")
	}
}
