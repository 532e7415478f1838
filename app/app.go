// Package app wires the conversation engine, render pipeline, and Telegram
// runtime together.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/verzendhq/verzendbot/app/artifacts"
	"github.com/verzendhq/verzendbot/app/carriers"
	"github.com/verzendhq/verzendbot/app/flow"
	"github.com/verzendhq/verzendbot/app/render"
	"github.com/verzendhq/verzendbot/app/session"
	"github.com/verzendhq/verzendbot/core/bootstrap"
	corecmd "github.com/verzendhq/verzendbot/core/cmd"
	coreconfig "github.com/verzendhq/verzendbot/core/config"
	coretelegram "github.com/verzendhq/verzendbot/core/telegram"
	"github.com/verzendhq/verzendbot/core/telegram/commands"
	"github.com/verzendhq/verzendbot/core/telegram/router"
)

// Config carries the core configuration for the runner.
type Config struct {
	core *coreconfig.Config
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config { return c.core }

// LoadConfig reads configuration for the bot runner.
func LoadConfig(path string) (corecmd.ConfigCarrier, error) {
	cfg, err := coreconfig.Load(path)
	if err != nil {
		return nil, err
	}
	return &Config{core: cfg}, nil
}

// App holds the composed bot.
type App struct {
	cfg    *coreconfig.Config
	db     *sqlx.DB
	engine *flow.Engine
}

// Bootstrap initializes infrastructure and composes the engine.
func Bootstrap(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg := carrier.CoreConfig()

	res, err := bootstrap.Run(bootstrap.Options{Config: cfg})
	if err != nil {
		return nil, err
	}

	carrierReg := carriers.NewRegistry(cfg.Render.TemplateDir)

	var ledger artifacts.Ledger = artifacts.NoopLedger{}
	if res.DB != nil {
		ledger = artifacts.NewPostgresLedger(res.DB)
	}

	pipeline, err := render.NewPipeline(render.Options{
		Carriers:  carrierReg,
		Raster:    &render.RodRasterizer{BrowserBin: cfg.Render.BrowserBin},
		Ledger:    ledger,
		OutputDir: cfg.Render.OutputDir,
		Workers:   cfg.Render.Workers,
		Timeout:   time.Duration(cfg.Render.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("app: pipeline setup failed: %w", err)
	}

	engine, err := flow.NewEngine(flow.Options{
		Sessions:  session.NewMemoryStore(),
		Carriers:  carrierReg,
		Pipeline:  pipeline,
		AssetsDir: cfg.Assets.Dir,
	})
	if err != nil {
		return nil, fmt.Errorf("app: engine setup failed: %w", err)
	}

	return &App{cfg: cfg, db: res.DB, engine: engine}, nil
}

// TelegramRunOptions builds the bot runtime wiring.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.engine.StartHandler,
		Description: "Start een nieuw verzendbewijs",
	})

	if err := reg.RegisterCallback(flow.CallbackCarrier, a.engine.CarrierCallback); err != nil {
		return coretelegram.RunOptions{}, err
	}
	if err := reg.RegisterCallback(flow.CallbackRestart, a.engine.RestartCallback); err != nil {
		return coretelegram.RunOptions{}, err
	}
	reg.SetTextFallback(a.engine.NoSessionHandler)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(a.engine, reg, router.TextOptions{})...)

	return coretelegram.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg, nil),
		Routes:      routes,
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			if a.db != nil {
				return a.db.Close()
			}
			return nil
		},
	}, nil
}
