// Package server holds the process wiring every service main shares: logger
// and metrics construction, the base gin engine, and graceful shutdown.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-gonic/gin"
	awspkg "github.com/yashrajoria/storefront/pkg/aws"
	"github.com/yashrajoria/storefront/services/common/config"
	"github.com/yashrajoria/storefront/services/common/logger"
	"github.com/yashrajoria/storefront/services/common/middleware"
	"go.uber.org/zap"
)

// Observability bundles what a service needs to log and emit metrics.
type Observability struct {
	Logger  *zap.Logger
	Metrics awspkg.Recorder
	// AWS is nil when no AWS config could be loaded.
	AWS *sdkaws.Config
}

// NewObservability builds the logger and metrics recorder. CloudWatch shipping
// is attempted only when enabled, and its failure degrades to console logging.
func NewObservability(ctx context.Context, cfg config.Common, service string) (*Observability, error) {
	obs := &Observability{Metrics: awspkg.NopRecorder{}}

	awsCfg, awsErr := awspkg.LoadAWSConfig(ctx)
	if awsErr == nil {
		obs.AWS = &awsCfg
	}

	var shipped *awspkg.LogsWriter
	var shipErr error
	if cfg.CloudWatch && obs.AWS != nil {
		shipped, shipErr = awspkg.NewLogsWriter(ctx, awsCfg, cfg.LogGroup, service)
	}

	var err error
	if shipped != nil {
		obs.Logger, err = logger.New(cfg.Env, service, shipped)
	} else {
		obs.Logger, err = logger.New(cfg.Env, service, nil)
	}
	if err != nil {
		return nil, err
	}

	if awsErr != nil {
		obs.Logger.Warn("AWS config unavailable, AWS integrations disabled", zap.Error(awsErr))
	}
	if shipErr != nil {
		obs.Logger.Warn("CloudWatch Logs unavailable, logging to console only", zap.Error(shipErr))
	}
	if cfg.CloudWatch && obs.AWS != nil {
		obs.Metrics = awspkg.NewMetricsClient(awsCfg, cfg.MetricsNS, true)
	}
	return obs, nil
}

// NewRouter returns a gin engine with the shared middleware chain and /health.
func NewRouter(obs *Observability, cfg config.Common, service string) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(obs.Logger))
	r.Use(middleware.Metrics(obs.Metrics, service))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.Timeout(30 * time.Second))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": service})
	})
	return r
}

// Run serves handler on port until SIGINT/SIGTERM, then shuts down within 10s.
// onShutdown runs after the HTTP server has stopped accepting requests.
func Run(log *zap.Logger, port string, handler http.Handler, onShutdown ...func(ctx context.Context)) {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	log.Info("Service started", zap.String("port", port))
	<-quit
	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	for _, fn := range onShutdown {
		fn(ctx)
	}
	log.Info("Server exited cleanly")
}
