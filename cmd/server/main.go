package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parking-system/config"
	"parking-system/internal/cache"
	"parking-system/internal/clock"
	"parking-system/internal/database"
	"parking-system/internal/handler"
	"parking-system/internal/queue"
	"parking-system/internal/repository"
	"parking-system/internal/service"
	"parking-system/internal/shell"
	"parking-system/internal/telemetry"
	"parking-system/internal/worker"
	"parking-system/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var mode = flag.String("mode", "", "Mode to run: cli, server, or both (overrides APP_MODE)")

func main() {
	flag.Parse()

	cfg := config.LoadConfig()
	if *mode != "" {
		cfg.Server.Mode = *mode
	}

	zlog, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zlog); err != nil {
		zlog.Fatal("Parking system stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, zlog *zap.Logger) error {
	tp, err := telemetry.New(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(tp, zlog)

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}
		if err := database.SeedSpots(ctx, pool, database.DefaultLot()); err != nil {
			return err
		}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	fares, err := service.NewFareCalculator(cfg.Fare)
	if err != nil {
		return err
	}

	events, err := newEventQueue(ctx, cfg.Queue, rdb, zlog)
	if err != nil {
		return err
	}

	clk := clock.SystemClock{}
	spots := service.NewSpotAllocator(repository.NewSpotRepository(pool))
	tickets := service.NewTicketLedger(repository.NewTicketRepository(pool))

	parking, err := service.NewInstrumentedParkingService(
		service.NewParkingService(spots, tickets, fares, clk, events, zlog),
		tp.Tracer(), tp.Meter(),
	)
	if err != nil {
		return err
	}

	board := cache.NewRedisOccupancyBoard(rdb, clk)
	if err := warmUpBoard(ctx, board, spots); err != nil {
		return err
	}

	// shell 選擇關閉時需要停止 worker
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()
	boardWorker := worker.NewBoardWorker(board, events, zlog)
	if err := boardWorker.Start(workerCtx); err != nil {
		return err
	}

	router := handler.NewRouter(cfg.Server.GinMode,
		handler.NewParkingHandler(parking, clk, zlog),
		handler.NewSpotHandler(spots, zlog),
		handler.NewTicketHandler(tickets, zlog),
		handler.NewBoardHandler(board, zlog),
	)
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	switch cfg.Server.Mode {
	case "cli":
		err = runCLI(ctx, parking, clk, zlog)
	case "server":
		err = runServer(ctx, srv, zlog)
	case "both":
		err = runBoth(ctx, srv, parking, clk, zlog)
	default:
		return errors.New("invalid mode " + cfg.Server.Mode + ", must be cli, server, or both")
	}

	cancelWorker()
	<-boardWorker.Done()
	return err
}

func newEventQueue(ctx context.Context, cfg config.QueueConfig, rdb *redis.Client, zlog *zap.Logger) (queue.EventQueue, error) {
	switch cfg.Backend {
	case "redis":
		return queue.NewRedisStreamEventQueue(ctx, rdb, cfg.ConsumerID, nil, zlog)
	case "memory", "":
		return queue.NewMemoryEventQueue(cfg.BufferSize), nil
	}
	return nil, errors.New("invalid queue backend " + cfg.Backend + ", must be memory or redis")
}

// warmUpBoard 以資料庫目前的空位數初始化看板
func warmUpBoard(ctx context.Context, board cache.OccupancyBoard, spots service.SpotAllocator) error {
	availability, err := spots.Availability(ctx)
	if err != nil {
		return err
	}
	for _, a := range availability {
		if err := board.WarmUp(ctx, a.VehicleClass, a.Total, a.Total-a.Available); err != nil {
			return err
		}
	}
	return nil
}

func runCLI(ctx context.Context, parking service.ParkingService, clk clock.Clock, zlog *zap.Logger) error {
	sh := shell.NewShell(parking, os.Stdin, os.Stdout, clk, zlog)
	if err := sh.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	zlog.Info("CLI exited")
	return nil
}

func runServer(ctx context.Context, srv *http.Server, zlog *zap.Logger) error {
	serverDone := make(chan error, 1)
	go func() {
		zlog.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		serverDone <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		zlog.Info("Received shutdown signal")
	}
	return shutdownServer(srv, zlog)
}

func runBoth(ctx context.Context, srv *http.Server, parking service.ParkingService, clk clock.Clock, zlog *zap.Logger) error {
	serverDone := make(chan error, 1)
	go func() {
		zlog.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		serverDone <- srv.ListenAndServe()
	}()

	cliDone := make(chan error, 1)
	go func() {
		cliDone <- runCLI(ctx, parking, clk, zlog)
	}()

	var err error
	select {
	case err = <-serverDone:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		return err
	case err = <-cliDone:
	case <-ctx.Done():
		zlog.Info("Received shutdown signal")
	}
	return errors.Join(err, shutdownServer(srv, zlog))
}

func shutdownServer(srv *http.Server, zlog *zap.Logger) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Server shutdown error", zap.Error(err))
		return err
	}
	return nil
}

func shutdownTelemetry(tp *telemetry.Provider, zlog *zap.Logger) {
	zlog.Info("Shutting down telemetry")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := tp.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Error shutting down telemetry", zap.Error(err))
	}
}
