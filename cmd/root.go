package cmd

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/careerlink/job-matcher/internal/events"
	"github.com/careerlink/job-matcher/internal/scheduler"
	"github.com/careerlink/job-matcher/internal/store"
)

const (
	app       = "job-matcher"
	envPrefix = "JOB_MATCHER"
)

type Config struct {
	Store    *StoreConfig    `mapstructure:"store" validate:"required"`
	Events   *EventsConfig   `mapstructure:"events"`
	Matching *MatchingConfig `mapstructure:"matching"`
	Schedule *ScheduleConfig `mapstructure:"schedule"`
}

type StoreConfig struct {
	Driver          string          `mapstructure:"driver" validate:"required,oneof=postgres supabase file memory"`
	DatabaseURL     string          `mapstructure:"database-url"`
	DatabaseURLFile string          `mapstructure:"database-url-file"`
	Supabase        *SupabaseConfig `mapstructure:"supabase" validate:"required_if=Driver supabase"`
	File            *FileConfig     `mapstructure:"file" validate:"required_if=Driver file"`
}

type SupabaseConfig struct {
	URL     string `mapstructure:"url" validate:"required,url"`
	Key     string `mapstructure:"key"`
	KeyFile string `mapstructure:"key-file"`
}

type FileConfig struct {
	Profile string `mapstructure:"profile" validate:"required"`
	Jobs    string `mapstructure:"jobs" validate:"required"`
	Matches string `mapstructure:"matches"`
}

type EventsConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	RedisURL      string `mapstructure:"redis-url" validate:"required_if=Enabled true"`
	ChannelPrefix string `mapstructure:"channel-prefix"`
}

type MatchingConfig struct {
	FairAsLowMatch   bool     `mapstructure:"fair-as-low-match"`
	ExcludeCompanies []string `mapstructure:"exclude-companies"`
	ExcludeFile      string   `mapstructure:"exclude-file"`
}

type ScheduleConfig struct {
	Spec      string        `mapstructure:"spec"`
	UserDelay time.Duration `mapstructure:"user-delay" validate:"gte=0"`
}

var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// envName is the prefixed variable AutomaticEnv would look up for key.
func envName(key string) string {
	return envPrefix + "_" + envKeyReplacer.Replace(strings.ToUpper(key))
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-matcher scores job postings against user profiles and keeps the matches up to date",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envBindings := map[string]string{
		"store.database-url-file": "DATABASE_URL_FILE",
		"store.supabase.url":      "SUPABASE_URL",
		"store.supabase.key-file": "SUPABASE_KEY_FILE",
		"events.redis-url":        "REDIS_URL",
	}
	for key, env := range envBindings {
		if err := viper.BindEnv(key, envName(key), env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("store.driver", store.DriverPostgres)
	viper.SetDefault("events.channel-prefix", events.DefaultChannelPrefix)
	viper.SetDefault("schedule.spec", scheduler.DefaultSpec)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// The version command works without any configuration.
	if versionCmd.CalledAs() != "" {
		return
	}

	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// We can't proceed if the config file parsed with error. A missing
	// default config is fine, everything can come from the environment.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if err := validateConfig(config); err != nil {
		return config, err
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config == nil {
		return errors.New("config is required")
	}
	return validator.New().Struct(config)
}
