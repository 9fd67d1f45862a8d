package main

import (
	"io"
	"strings"

	"github.com/prometheus/common/expfmt"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/inventory/app/services"
	"github.com/shashiranjanraj/inventory/app/store"
	"github.com/shashiranjanraj/inventory/config"
	"github.com/shashiranjanraj/inventory/pkg/database"
	"github.com/shashiranjanraj/inventory/pkg/logger"
	"github.com/shashiranjanraj/inventory/pkg/metrics"
)

// bootConfig loads config and applies the command-line overrides.
func bootConfig() (config.Config, error) {
	if err := config.Load(); err != nil {
		return config.Config{}, err
	}
	cfg := config.Get()
	if dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if authority != "" {
		cfg.Store.Authority = authority
	}
	return cfg, cfg.Validate()
}

// bootDB loads config and opens the database connection.
func bootDB() (*gorm.DB, config.Config, error) {
	cfg, err := bootConfig()
	if err != nil {
		return nil, cfg, err
	}
	if err := database.Connect(cfg.DB); err != nil {
		return nil, cfg, err
	}
	return database.DB, cfg, nil
}

// bootStore opens the database and the product store on top of it.
func bootStore() (*store.Store, error) {
	db, cfg, err := bootDB()
	if err != nil {
		return nil, err
	}
	return store.New(db, store.Options{
		Authority: cfg.Store.Authority,
		Logger:    logger.With("store"),
	}), nil
}

func bootService() (*services.InventoryService, *store.Store, error) {
	st, err := bootStore()
	if err != nil {
		return nil, nil, err
	}
	return services.NewInventoryService(st), st, nil
}

func closeDB() {
	if database.DB != nil {
		_ = database.Close(database.DB)
		database.DB = nil
	}
}

// writeMetrics prints the inventory_store_* families in text format.
func writeMetrics(w io.Writer) error {
	families, err := metrics.DefaultRegistry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "inventory_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
