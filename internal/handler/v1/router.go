package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/edflow/edflow/config"
	"github.com/edflow/edflow/pkg/metrics"
)

func NewRouter(cfg *config.Config, handler *FlowHandler, collector *metrics.Collector, log *zap.Logger) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(instrument(collector))
	r.Use(corsHeaders(cfg.CORS))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": cfg.App.Version})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	api := r.Group("/api/v1")
	{
		patients := api.Group("/patients")
		{
			patients.POST("", handler.Register)
			patients.GET("/:id", handler.GetPatient)
			patients.PUT("/:id/triage", handler.AssignTriage)
			patients.PUT("/:id/vitals", handler.UpdateVitals)
			patients.PUT("/:id/complaint", handler.UpdateChiefComplaint)
			patients.PUT("/:id/bed/:bedId", handler.AssignBed)
			patients.PUT("/:id/status", handler.TransitionStatus)
			patients.POST("/:id/transfer", handler.TransferOrAdmit)
			patients.POST("/:id/discharge", handler.Discharge)
			patients.POST("/:id/fast-track", handler.FastTrackDischarge)
			patients.GET("/:id/alerts", handler.GetPatientAlerts)
			patients.POST("/:id/alerts/ack", handler.AcknowledgeAlert)
		}

		beds := api.Group("/beds")
		{
			beds.GET("", handler.GetBedBoard)
			beds.POST("/:bedId/release", handler.ReleaseBed)
			beds.POST("/:bedId/available", handler.MarkBedAvailable)
		}

		api.GET("/queue", handler.GetQueue)
		api.GET("/alerts", handler.GetActiveAlerts)
		api.GET("/census", handler.GetCensus)
	}

	return r
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func instrument(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		collector.InFlightGauge.Inc()
		start := time.Now()
		c.Next()
		collector.InFlightGauge.Dec()

		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		collector.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		collector.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

func corsHeaders(cfg config.CORSConfig) gin.HandlerFunc {
	origins := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		origins[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (origins["*"] || origins[origin]) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", joinHeader(cfg.AllowedMethods))
			c.Header("Access-Control-Allow-Headers", joinHeader(cfg.AllowedHeaders))
			c.Header("Access-Control-Max-Age", strconv.Itoa(int(cfg.MaxAge.Seconds())))
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func joinHeader(values []string) string {
	out := ""
	for i, v := range values {
		if i > 0 {
			out += ", "
		}
		out += v
	}
	return out
}
