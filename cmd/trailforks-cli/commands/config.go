package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
	"trailforks-scraper/lib/configutil"
	"trailforks-scraper/lib/regiondb"
	"trailforks-scraper/lib/restyutil"
	"trailforks-scraper/lib/timezone"
	"trailforks-scraper/lib/trailforks/core"
	"trailforks-scraper/lib/trailforks/region"
	"trailforks-scraper/lib/trailforks/user"
)

const (
	DefaultConfigFile = "trailforks.json5"
	DefaultRegionDb   = ".trailforks/regions.db"
)

type Config struct {
	AppId           string `json:"app_id"`
	AppSecret       string `json:"app_secret"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	BaseUrl         string `json:"base_url"`
	TimeoutSeconds  int    `json:"timeout_seconds"`
	RegionDb        string `json:"region_db"`
	PageConcurrency int    `json:"page_concurrency"`
	DebugDumpDir    string `json:"debug_dump_dir"`
	// Timezone renders ride log dates, the system zone when empty.
	Timezone string `json:"timezone"`
}

// applyEnv overrides the credentials with TRAILFORKS_* environment
// variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	overrides := []struct {
		name   string
		target *string
	}{
		{"TRAILFORKS_APP_ID", &c.AppId},
		{"TRAILFORKS_APP_SECRET", &c.AppSecret},
		{"TRAILFORKS_USERNAME", &c.Username},
		{"TRAILFORKS_PASSWORD", &c.Password},
	}
	for _, o := range overrides {
		value, ok := lookup(o.name)
		if ok && value != "" {
			*o.target = value
		}
	}
}

func loadConfig(path string) (Config, error) {
	cfg, err := configutil.Resolve[Config](path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no config file found, using the environment only", "path", path)
		err = nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg.applyEnv(os.LookupEnv)

	if regionDb != "" {
		cfg.RegionDb = regionDb
	}
	if cfg.RegionDb == "" {
		cfg.RegionDb = DefaultRegionDb
	}
	return cfg, nil
}

func (c Config) clientOptions() (core.ClientOptions, error) {
	opts := core.ClientOptions{
		BaseUrl:         c.BaseUrl,
		AppId:           c.AppId,
		AppSecret:       c.AppSecret,
		Username:        c.Username,
		Password:        c.Password,
		Timeout:         time.Duration(c.TimeoutSeconds) * time.Second,
		PageConcurrency: c.PageConcurrency,
	}
	loc, err := timezone.Load(c.Timezone)
	if err != nil {
		return core.ClientOptions{}, err
	}
	opts.Location = loc

	if c.DebugDumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(c.DebugDumpDir)
		if err != nil {
			return core.ClientOptions{}, err
		}
		opts.DumpOutput = output
	}
	return opts, nil
}

// session is everything a command needs, opened from the config.
type session struct {
	cfg    Config
	client *core.Client
	store  regiondb.Store
}

func openSession() (*session, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.clientOptions()
	if err != nil {
		return nil, err
	}
	client, err := core.NewClient(opts)
	if err != nil {
		return nil, err
	}
	store, err := regiondb.OpenStore(cfg.RegionDb)
	if err != nil {
		return nil, err
	}
	return &session{
		cfg:    cfg,
		client: client,
		store:  store,
	}, nil
}

func (s *session) Close() {
	err := s.store.Close()
	if err != nil {
		slog.Warn("failed to close region db", "err", err)
	}
}

func (s *session) regions() region.Client {
	return region.NewClient(s.client, s.store)
}

func (s *session) user() user.Client {
	return user.NewClient(s.client)
}

// login signs in unless a cookie is already held.
func (s *session) login(ctx context.Context) error {
	if s.client.HasCookie() {
		return nil
	}
	return s.client.Login(ctx)
}
