package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"platen/internal/config"
	"platen/internal/fulfillment"
	"platen/internal/logging"
	"platen/internal/runs"
	"platen/internal/services/objstore"
	"platen/internal/services/partner"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) openStore() (*runs.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return runs.Open(cfg)
}

func (c *commandContext) partnerClient() (*partner.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return partner.New(cfg.Partner.BaseURL, cfg.Partner.APIToken,
		time.Duration(cfg.Partner.RequestTimeout)*time.Second)
}

func (c *commandContext) storageClient() (*objstore.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return objstore.New(cfg.Storage.Endpoint, cfg.Storage.Bucket,
		cfg.Storage.PublicBaseURL, cfg.Storage.AccessKey,
		time.Duration(cfg.Storage.RequestTimeout)*time.Second)
}

// newOrchestrator wires the full production pipeline. The caller owns
// closing the returned store.
func (c *commandContext) newOrchestrator() (*fulfillment.Orchestrator, *runs.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := c.openStore()
	if err != nil {
		return nil, nil, err
	}
	partnerAPI, err := c.partnerClient()
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	storageAPI, err := c.storageClient()
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	orch, err := fulfillment.New(cfg, store, partnerAPI, storageAPI, c.ensureLogger())
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return orch, store, nil
}
