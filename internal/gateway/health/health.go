// Package health tracks the status of the register's backing stores and
// publishes it over the standard gRPC health protocol.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"gorm.io/gorm"

	"cafe-pos/internal/logger"
)

const (
	ServiceName = "cafe.pos"

	StatusHealthy     = "healthy"
	StatusUnavailable = "unavailable"
	StatusDisabled    = "disabled"
	StatusDegraded    = "degraded"
)

type ComponentStatus struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	CheckedAt time.Time `json:"checked_at"`
}

// Checker pings the database and redis. The database is required; redis is
// optional and only degrades the overall status.
type Checker struct {
	db      *gorm.DB
	redis   *redis.Client
	timeout time.Duration

	server    *grpchealth.Server
	scheduler *gocron.Scheduler

	mu         sync.RWMutex
	components map[string]ComponentStatus
}

func NewChecker(db *gorm.DB, redisClient *redis.Client) *Checker {
	c := &Checker{
		db:         db,
		redis:      redisClient,
		timeout:    3 * time.Second,
		server:     grpchealth.NewServer(),
		components: map[string]ComponentStatus{},
	}
	c.server.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	c.server.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return c
}

// Register exposes the health service and server reflection on s.
func (c *Checker) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, c.server)
	reflection.Register(s)
}

func (c *Checker) Refresh(ctx context.Context) {
	now := time.Now()
	components := map[string]ComponentStatus{
		"database": c.checkDatabase(ctx, now),
		"redis":    c.checkRedis(ctx, now),
	}

	c.mu.Lock()
	c.components = components
	c.mu.Unlock()

	status := healthpb.HealthCheckResponse_SERVING
	if components["database"].Status != StatusHealthy {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	c.server.SetServingStatus("", status)
	c.server.SetServingStatus(ServiceName, status)
}

func (c *Checker) checkDatabase(ctx context.Context, now time.Time) ComponentStatus {
	if c.db == nil {
		return ComponentStatus{Status: StatusUnavailable, Message: "Database not configured", CheckedAt: now}
	}
	sqlDB, err := c.db.DB()
	if err == nil {
		pingCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err = sqlDB.PingContext(pingCtx)
		cancel()
	}
	if err != nil {
		logger.Warn(ctx, "Database health check failed", zap.Error(err))
		return ComponentStatus{Status: StatusUnavailable, Message: err.Error(), CheckedAt: now}
	}
	return ComponentStatus{Status: StatusHealthy, Message: "Database is responding", CheckedAt: now}
}

func (c *Checker) checkRedis(ctx context.Context, now time.Time) ComponentStatus {
	if c.redis == nil {
		return ComponentStatus{Status: StatusDisabled, Message: "Caching and order events are off", CheckedAt: now}
	}
	pingCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.redis.Ping(pingCtx).Err(); err != nil {
		logger.Warn(ctx, "Redis health check failed", zap.Error(err))
		return ComponentStatus{Status: StatusUnavailable, Message: err.Error(), CheckedAt: now}
	}
	return ComponentStatus{Status: StatusHealthy, Message: "Redis is responding", CheckedAt: now}
}

// Snapshot returns the last refresh result and the overall status derived
// from it.
func (c *Checker) Snapshot() (string, map[string]ComponentStatus) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]ComponentStatus, len(c.components))
	overall := StatusHealthy
	if len(c.components) == 0 {
		overall = StatusUnavailable
	}
	for name, cs := range c.components {
		out[name] = cs
		switch {
		case name == "database" && cs.Status != StatusHealthy:
			overall = StatusUnavailable
		case cs.Status == StatusUnavailable && overall == StatusHealthy:
			overall = StatusDegraded
		}
	}
	return overall, out
}

// Start refreshes immediately and then every interval in the background.
func (c *Checker) Start(interval time.Duration) error {
	c.scheduler = gocron.NewScheduler(time.UTC)
	if _, err := c.scheduler.Every(interval).Do(func() {
		c.Refresh(context.Background())
	}); err != nil {
		return err
	}
	c.scheduler.StartAsync()
	return nil
}

func (c *Checker) Stop() {
	if c.scheduler != nil {
		c.scheduler.Stop()
	}
	c.server.Shutdown()
}
