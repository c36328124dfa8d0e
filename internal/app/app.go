// Package app wires the configured backend, ledger and services shared by
// the server and the worker binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"go-repair-pos/internal/config"
	"go-repair-pos/internal/database"
	"go-repair-pos/internal/ledger"
	"go-repair-pos/internal/metrics"
	"go-repair-pos/internal/reports"
	"go-repair-pos/internal/services"
	"go-repair-pos/internal/store"
)

type App struct {
	Store    store.Store
	Ledger   *ledger.Ledger
	Metrics  *metrics.Metrics
	Users    *services.Users
	Products *services.Products
	Sales    *services.Sales
	Repairs  *services.Repairs
	Dues     *services.Dues
	Settings *services.Settings
	Reports  *reports.Reports
}

// OpenStore connects the backend named by cfg.StoreDriver.
func OpenStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case "redis":
		s, err := store.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPrefix)
		if err != nil {
			return nil, err
		}
		log.Info("ledger backed by redis", slog.String("addr", cfg.RedisAddr))
		return s, nil
	case "sql":
		db, err := database.Connect(cfg.DBDSN, log)
		if err != nil {
			return nil, err
		}
		log.Info("ledger backed by sql", slog.String("dialect", database.Dialector(cfg.DBDSN).Name()))
		return database.NewStore(db), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// New builds the services over an opened store and seeds the default
// accounts on first run.
func New(ctx context.Context, s store.Store, m *metrics.Metrics, log *slog.Logger) (*App, error) {
	l := ledger.New(s, log)
	d := services.Deps{Ledger: l, Metrics: m, Log: log}
	a := &App{
		Store:    s,
		Ledger:   l,
		Metrics:  m,
		Users:    services.NewUsers(d),
		Products: services.NewProducts(d),
		Sales:    services.NewSales(d),
		Repairs:  services.NewRepairs(d),
		Dues:     services.NewDues(d),
		Settings: services.NewSettings(d),
		Reports:  reports.New(l, nil),
	}
	if err := a.Users.EnsureDefaults(ctx); err != nil {
		return nil, fmt.Errorf("seed users: %w", err)
	}
	return a, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}
