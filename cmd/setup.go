package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/careerlink/job-matcher/internal/events"
	"github.com/careerlink/job-matcher/internal/filtering"
	"github.com/careerlink/job-matcher/internal/logger"
	"github.com/careerlink/job-matcher/internal/matching"
	"github.com/careerlink/job-matcher/internal/scoring"
	"github.com/careerlink/job-matcher/internal/secrets"
	"github.com/careerlink/job-matcher/internal/store"
)

// runtime holds everything a command needs once configuration is resolved.
type runtime struct {
	logger    *zap.Logger
	config    *Config
	store     store.Store
	publisher events.Publisher
}

// setup builds the logger, config, store and publisher. Any failure is fatal.
func setup(ctx context.Context) *runtime {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the job-matcher", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	opts, err := storeOptions(config.Store)
	if err != nil {
		logger.Fatal("resolving store secrets",
			zap.Error(err),
			zap.String("hint", "set DATABASE_URL_FILE / SUPABASE_KEY_FILE or the matching key-file entries in the configuration file"),
		)
	}

	s, err := store.Open(ctx, config.Store.Driver, opts)
	if err != nil {
		logger.Fatal("opening the store", zap.String("driver", config.Store.Driver), zap.Error(err))
	}

	publisher, err := newPublisher(ctx, config.Events)
	if err != nil {
		logger.Fatal("connecting to redis", zap.Error(err))
	}

	return &runtime{logger: logger, config: config, store: s, publisher: publisher}
}

func (r *runtime) Close() {
	if err := r.publisher.Close(); err != nil {
		r.logger.Warn("closing the publisher", zap.Error(err))
	}
	if err := r.store.Close(); err != nil {
		r.logger.Warn("closing the store", zap.Error(err))
	}
	_ = r.logger.Sync()
}

// engine builds a matching engine over source with the configured scorer,
// filters and publisher.
func (r *runtime) engine(source matching.Source) *matching.Engine {
	var filterCfg filtering.Config
	fairAsLow := false
	if m := r.config.Matching; m != nil {
		filterCfg.ExcludeCompanies = m.ExcludeCompanies
		filterCfg.ExcludeFile = m.ExcludeFile
		fairAsLow = m.FairAsLowMatch
	}

	return matching.NewEngine(source,
		matching.WithScorer(scoring.NewScorer(scoring.WithFairAsLowMatch(fairAsLow))),
		matching.WithFilters(&filterCfg),
		matching.WithPublisher(r.publisher),
		matching.WithLogger(r.logger),
	)
}

func storeOptions(cfg *StoreConfig) (store.Options, error) {
	var opts store.Options

	switch cfg.Driver {
	case store.DriverPostgres:
		url, err := secrets.Load(secrets.Source{
			Name:  "database url",
			File:  cfg.DatabaseURLFile,
			Env:   "DATABASE_URL",
			Value: cfg.DatabaseURL,
		})
		if err != nil {
			return opts, err
		}
		opts.DatabaseURL = url
	case store.DriverSupabase:
		key, err := secrets.Load(secrets.Source{
			Name:  "supabase key",
			File:  cfg.Supabase.KeyFile,
			Env:   "SUPABASE_KEY",
			Value: cfg.Supabase.Key,
		})
		if err != nil {
			return opts, err
		}
		opts.Supabase = store.SupabaseOptions{URL: cfg.Supabase.URL, Key: key}
	case store.DriverFile:
		opts.File = store.FileOptions{
			Profile: cfg.File.Profile,
			Jobs:    cfg.File.Jobs,
			Matches: cfg.File.Matches,
		}
	}

	return opts, nil
}

func newPublisher(ctx context.Context, cfg *EventsConfig) (events.Publisher, error) {
	if cfg == nil || !cfg.Enabled {
		return events.Nop{}, nil
	}

	rdb, err := events.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	return events.NewRedis(rdb, cfg.ChannelPrefix), nil
}
