package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/rpkit/shop-ui/config"
	"github.com/rpkit/shop-ui/internal/adapter/analytics"
	"github.com/rpkit/shop-ui/internal/adapter/bridge"
	"github.com/rpkit/shop-ui/internal/adapter/httphandler"
	"github.com/rpkit/shop-ui/internal/core/port"
	"github.com/rpkit/shop-ui/internal/core/service"
)

type App struct {
	ctx context.Context
	cfg config.Config

	bridge      *bridge.Bridge
	settlements port.SettlementPublisher
	session     *service.Session
	httpServer  httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initOutboundAdapters()
	app.initCoreSession()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initOutboundAdapters() {
	const op = "App.initOutboundAdapters"

	app.bridge = bridge.New()

	if !app.cfg.AnalyticsEnabled() {
		slog.Info("settlement analytics disabled")
		return
	}

	sp, err := analytics.NewSettlementProducer(
		analytics.ClientOpt(app.ctx, app.cfg.Analytics.SeedBrokers),
		analytics.TopicOpt(app.cfg.Analytics.SettlementsTopic),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.settlements = sp
}

func (app *App) initCoreSession() {
	app.session = service.New(app.bridge, app.settlements, service.ClearAlways)
	app.bridge.Attach(app.session, app.session)
}

func (app *App) initInboundAdapters() {
	api := http.NewServeMux()
	httphandler.RegisterShop(api, app.session)
	httphandler.RegisterCart(api, app.session)
	httphandler.RegisterView(api, app.session)
	httphandler.RegisterCheckout(api, app.session, app.session)

	// the bridge endpoint hijacks its connection, so only the UI API
	// routes go through the JSON middleware
	mux := http.NewServeMux()
	bridge.Register(mux, app.bridge)
	mux.Handle("/", httphandler.AllowJSON(api))

	app.httpServer = httphandler.NewHTTPServer(app.cfg.HTTPServerAddr, mux)
}

func (app *App) Run(stopFn context.CancelFunc) {
	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	app.bridge.Close()
	if app.settlements != nil {
		app.settlements.Close()
	}

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
