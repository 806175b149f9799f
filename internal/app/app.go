// Package app wires configuration into the store backend, the optional Redis
// client and the HTTP router shared by the server and the CLI.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prontuario/prontuario/backend/go-services/handlers"
	"github.com/prontuario/prontuario/backend/go-services/internal/config"
	"github.com/prontuario/prontuario/backend/go-services/internal/database"
	"github.com/prontuario/prontuario/backend/go-services/internal/patient/handler"
	"github.com/prontuario/prontuario/backend/go-services/internal/patient/service"
	"github.com/prontuario/prontuario/backend/go-services/internal/store"
	"github.com/prontuario/prontuario/backend/go-services/pkg/logger"
	"github.com/prontuario/prontuario/backend/go-services/pkg/middleware"
	"github.com/redis/go-redis/v9"
)

const mongoConnectAttempts = 5

// Resources are the long-lived clients built from configuration.
type Resources struct {
	Store store.Store
	// Redis is set when REDIS_HOST is configured and reachable.
	Redis   *redis.Client
	closers []func()
}

// Close releases every client opened by Open.
func (r *Resources) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
}

// Open connects the configured store backend. Redis is also connected when
// configured, since the rate limiter may use it; a Redis failure is only fatal
// when Redis is the store backend.
func Open(ctx context.Context, cfg *config.Config) (*Resources, error) {
	res := &Resources{}

	if cfg.Redis.Host != "" {
		client, err := database.ConnectRedis(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			if cfg.Store.Backend == config.BackendRedis {
				return nil, err
			}
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
		} else {
			logger.Infof("connected to Redis %s:%s", cfg.Redis.Host, cfg.Redis.Port)
			res.Redis = client
			res.closers = append(res.closers, func() { _ = client.Close() })
		}
	}

	var s store.Store
	switch cfg.Store.Backend {
	case config.BackendMemory:
		s = store.NewMemoryStore()
	case config.BackendFile:
		fs := store.NewFileStore(cfg.Store.File)
		if err := fs.Init(); err != nil {
			res.Close()
			return nil, err
		}
		logger.Infof("using document file %s", fs.Path())
		s = fs
	case config.BackendMongo:
		client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, mongoConnectAttempts, func(attempt int, err error) {
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, mongoConnectAttempts, err)
		})
		if err != nil {
			res.Close()
			return nil, fmt.Errorf("could not connect to MongoDB after %d attempts: %w", mongoConnectAttempts, err)
		}
		res.closers = append(res.closers, func() { _ = client.Disconnect(context.Background()) })
		col := client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection)
		s = store.NewMongoStore(col, store.DefaultMongoDocumentID)
	case config.BackendRedis:
		if res.Redis == nil {
			return nil, fmt.Errorf("STORE_BACKEND=redis requires REDIS_HOST")
		}
		s = store.NewRedisStore(res.Redis, cfg.Redis.Key)
	case config.BackendMinIO:
		mc, err := database.ConnectMinIO(ctx, database.MinIOOptions{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			UseSSL:    cfg.MinIO.UseSSL,
			Bucket:    cfg.MinIO.Bucket,
		})
		if err != nil {
			res.Close()
			return nil, err
		}
		s = store.NewObjectStore(mc, cfg.MinIO.Bucket, cfg.MinIO.Object)
	default:
		res.Close()
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	res.Store = store.Instrument(s)
	logger.Infof("document store: %s", s.Name())
	return res, nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	return c
}

// NewRouter builds the HTTP API. startTime feeds the uptime shown by /ready.
func NewRouter(cfg *config.Config, res *Resources, startTime time.Time) *gin.Engine {
	r := gin.New()
	r.Use(middleware.JSONRecovery(), middleware.RequestLogger())
	r.Use(cors.New(corsConfig(cfg.CORS.AllowedOrigins)))

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && res.Redis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(res.Redis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// ready only when the document can be loaded (and Redis answers, when the
	// limiter depends on it)
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if _, err := res.Store.Load(ctx); err != nil {
			logger.Warnf("readiness: store %s: %v", res.Store.Name(), err)
			deps["storage"] = false
			ready = false
		} else {
			deps["storage"] = true
		}

		if cfg.RateLimit.Enabled && cfg.RateLimit.UseRedis {
			deps["redis"] = res.Redis != nil && res.Redis.Ping(ctx).Err() == nil
			if !deps["redis"] {
				ready = false
			}
		}

		uptime := time.Since(startTime).String()
		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": uptime})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": uptime})
	})

	handlers.RegisterSwagger(r)
	handler.RegisterPatientRoutes(r, service.New(res.Store))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
