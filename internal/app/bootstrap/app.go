package bootstrap

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/taoyao-code/tracker-server/internal/alerts"
	"github.com/taoyao-code/tracker-server/internal/api"
	cfgpkg "github.com/taoyao-code/tracker-server/internal/config"
	"github.com/taoyao-code/tracker-server/internal/gateway"
	"github.com/taoyao-code/tracker-server/internal/health"
	"github.com/taoyao-code/tracker-server/internal/httpserver"
	"github.com/taoyao-code/tracker-server/internal/metrics"
	"github.com/taoyao-code/tracker-server/internal/migrate"
	"github.com/taoyao-code/tracker-server/internal/outbound"
	"github.com/taoyao-code/tracker-server/internal/protocol/beesure"
	"github.com/taoyao-code/tracker-server/internal/session"
	"github.com/taoyao-code/tracker-server/internal/storage/gormrepo"
	pgstorage "github.com/taoyao-code/tracker-server/internal/storage/pg"
	redisstorage "github.com/taoyao-code/tracker-server/internal/storage/redis"
	"github.com/taoyao-code/tracker-server/internal/tcpserver"
)

// Run 统一启动流程：依赖按阶段就绪，TCP 网关最后启动。
// 任何必选依赖（数据库）失败直接返回错误。
func Run(cfg *cfgpkg.Config, log *zap.Logger) error {
	log.Info("starting tracker server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env))

	// ========== 阶段1: 指标与就绪状态 ==========
	reg := metrics.NewRegistry()
	appm := metrics.NewAppMetrics(reg)
	metricsHandler := metrics.Handler(reg)
	ready := health.New()

	// ========== 阶段2: 数据库（阻塞等待）==========
	ctx := context.Background()
	dbpool, err := pgstorage.NewPool(ctx,
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
		cfg.Database.ConnMaxLifetime,
		log)
	if err != nil {
		log.Error("database initialization failed", zap.Error(err))
		return err
	}
	defer dbpool.Close()

	migrationsDir := cfg.Database.MigrationsDir
	if migrationsDir == "" {
		migrationsDir = "db/migrations"
	}
	if err := (migrate.Runner{Dir: migrationsDir}).Up(ctx, dbpool); err != nil {
		log.Error("migrations failed", zap.Error(err))
		return err
	}
	ready.SetDBReady(true)
	log.Info("database ready", zap.String("dsn", cfgpkg.MaskDSN(cfg.Database.DSN)))

	// 管理API读路径走 gorm（热路径仍是 pgx）
	gdb, err := gorm.Open(gormpg.Open(cfg.Database.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		log.Error("gorm open failed", zap.Error(err))
		return err
	}
	core := gormrepo.New(gdb)

	// ========== 阶段3: Redis（可选）==========
	var redisClient *redisstorage.Client
	if cfg.Redis.Enabled {
		redisClient, err = redisstorage.NewClient(cfg.Redis)
		if err != nil {
			log.Error("redis initialization failed", zap.Error(err))
			return err
		}
		defer redisClient.Close()
		log.Info("redis ready", zap.String("addr", cfg.Redis.Addr))
	}

	// ========== 阶段4: 会话管理器 ==========
	var sess session.SessionManager
	if cfg.Session.UseRedis && redisClient != nil {
		rm := session.NewRedisManager(redisClient.Client, "", cfg.Session.Timeout)
		defer func() { _ = rm.Cleanup() }()
		sess = rm
		log.Info("redis session manager enabled", zap.Duration("timeout", cfg.Session.Timeout))
	} else {
		sess = session.New(cfg.Session.Timeout)
	}

	// ========== 阶段5: 协议处理器与告警推送 ==========
	repo := &pgstorage.Repository{Pool: dbpool}
	handlers := beesure.NewHandlers(repo, log)
	handlers.OnStoreError = func() { appm.StoreErrorTotal.Inc() }

	var pusher gateway.AlarmPusher
	if cfg.Alerts.WebhookURL != "" {
		pusher = alerts.NewPusher(&http.Client{Timeout: 10 * time.Second},
			cfg.Alerts.WebhookURL, cfg.Alerts.Secret)
		log.Info("alarm webhook enabled", zap.String("url", cfg.Alerts.WebhookURL))
	}

	// ========== 阶段6: 下行队列 Worker（需Redis）==========
	var queue *redisstorage.OutboundQueue
	var worker *outbound.Worker
	if redisClient != nil {
		queue = redisstorage.NewOutboundQueue(redisClient)
		worker = outbound.NewWorker(queue, cfg.Outbound.ThrottleMs, log)
		worker.SetGetConn(sess.GetConn)

		wctx, wcancel := context.WithCancel(ctx)
		defer wcancel()
		go worker.Start(wctx)
	}

	// ========== 阶段7: HTTP 服务 ==========
	httpSrv := httpserver.New(cfg.HTTP, cfg.Metrics.Path, metricsHandler, ready.Ready)

	healthAgg := health.NewAggregator(health.NewDatabaseChecker(dbpool))
	healthAgg.AddChecker(health.NewSessionChecker(sess))
	if redisClient != nil {
		healthAgg.AddChecker(health.NewRedisChecker(redisClient))
	}
	if queue != nil {
		healthAgg.AddChecker(health.NewOutboundChecker(queue))
	}

	engine := httpSrv.Engine()
	api.RegisterRoutes(engine, cfg, core, sess, queue, worker, appm, log)
	health.RegisterHTTPRoutes(engine, healthAgg)

	go func() {
		if err := httpSrv.Start(); err != nil {
			log.Error("http server error", zap.Error(err))
		}
	}()
	log.Info("http server started", zap.String("addr", cfg.HTTP.Addr))

	// ========== 阶段8: TCP 网关（依赖全部就绪后启动）==========
	tcpSrv := tcpserver.New(cfg.TCP, log)
	tcpSrv.SetMetricsCallbacks(
		func() { appm.TCPAccepted.Inc() },
		func(n int) { appm.TCPBytesReceived.Add(float64(n)) },
	)
	tcpSrv.SetConnHandler(gateway.NewConnHandler(
		cfg.TCP, sess, appm,
		func() *beesure.Handlers { return handlers },
		pusher, log,
	))

	if err := tcpSrv.Start(); err != nil {
		log.Error("tcp server start failed", zap.Error(err))
		return err
	}
	ready.SetTCPReady(true)
	healthAgg.AddChecker(health.NewTCPChecker(tcpSrv))
	log.Info("tcp server started", zap.String("addr", cfg.TCP.Addr))
	log.Info("all services ready, waiting for connections")

	// ========== 阶段9: 等待关闭信号 ==========
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("received shutdown signal, gracefully shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpSrv.Shutdown(shutdownCtx)
	log.Info("http server stopped")

	_ = tcpSrv.Shutdown(shutdownCtx)
	log.Info("tcp server stopped")

	log.Info("shutdown complete")
	return nil
}
