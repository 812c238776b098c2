package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/fybot/airtime-orders/internal/config"
	"github.com/fybot/airtime-orders/internal/engine"
	"github.com/fybot/airtime-orders/internal/httpx"
	kafkax "github.com/fybot/airtime-orders/internal/kafka"
	"github.com/fybot/airtime-orders/internal/notify"
	"github.com/fybot/airtime-orders/internal/orders"
	"github.com/fybot/airtime-orders/internal/redisx"
	"github.com/fybot/airtime-orders/internal/settings"
	"github.com/fybot/airtime-orders/internal/shadow"
	"github.com/fybot/airtime-orders/internal/statum"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Durable state
	store, err := orders.OpenStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("open order store: %v", err)
	}
	cfgStore, err := settings.Open(cfg.DataDir)
	if err != nil {
		log.Fatalf("open settings store: %v", err)
	}

	// Redis (order cache, read path only)
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Lifecycle event stream
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicLifecycle, 1024, log)
	prod.Start(ctx)

	// Operator channel
	wa := notify.NewWhatsApp(cfg.NotifyGatewayURL, cfg.AdminWhatsApp)

	// Engine
	eng := engine.New(engine.Config{
		Store:        store,
		Settings:     cfgStore,
		Payments:     shadow.NewClient(cfg.ShadowSTKURL, cfg.ShadowStatusURL),
		Airtime:      statum.NewClient(cfg.StatumAirtimeURL),
		Notifier:     wa,
		Events:       prod,
		Cache:        redisx.NewOrderCache(rdb),
		ServiceName:  cfg.ServiceName,
		PollInterval: cfg.PollInterval,
		Workers:      cfg.EngineWorkers,
		Log:          log,
	})
	eng.Start(ctx)

	// HTTP
	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{
		Engine:   eng,
		Store:    store,
		Settings: cfgStore,
		Redis:    rdb,
		Log:      log,
	}
	oh.Register(router)
	ah := &httpx.AdminHandler{
		Store:    store,
		Settings: cfgStore,
		Notifier: wa,
		Token:    cfg.AdminToken,
		Log:      log,
	}
	ah.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Infof("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	if wa.Ready() {
		if err := wa.Send(ctx, cfg.ServiceName+" is online"); err != nil {
			log.WithError(err).Warn("startup alert failed")
		}
	}

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	eng.Close() // stop intake, finish in-flight workflows
	eng.WaitClosed()
	prod.Close() // flush & close writer
	cancel()
	prod.WaitClosed()
}
