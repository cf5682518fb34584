package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/palemoky/piramiden/internal/config"
	"github.com/palemoky/piramiden/internal/logger"
	"github.com/palemoky/piramiden/internal/server"
)

var version = "dev"

// flags override the config file; each also reads PIRAMIDEN_<FLAG>
type flags struct {
	configPath    string
	host          string
	port          int
	publicURL     string
	redisAddr     string
	logLevel      string
	logFormat     string
	logFile       string
	reviewTimeout time.Duration
	roundTimeout  time.Duration
}

func main() {
	// a missing .env is fine
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "⚠️ .env: %v\n", err)
	}

	cobra.CheckErr(newCmd(&flags{}).Execute())
}

func newCmd(f *flags) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:     "piramiden",
		Short:   "Websocket server for the pyramid drinking card game.",
		Args:    cobra.NoArgs,
		Version: version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags(), f)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&f.configPath, "config", "c", "configs/config.yaml", "config file, defaults are used when missing (env: PIRAMIDEN_CONFIG)")
	fs.StringVarP(&f.host, "host", "b", "", "address to bind to (env: PIRAMIDEN_HOST)")
	fs.IntVarP(&f.port, "port", "p", 0, "port to listen on (env: PIRAMIDEN_PORT)")
	fs.StringVar(&f.publicURL, "public-url", "", "client URL encoded in invite QR codes (env: PIRAMIDEN_PUBLIC_URL)")
	fs.StringVar(&f.redisAddr, "redis-addr", "", "redis address, empty disables redis (env: PIRAMIDEN_REDIS_ADDR)")
	fs.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error (env: PIRAMIDEN_LOG_LEVEL)")
	fs.StringVar(&f.logFormat, "log-format", "", "console or json (env: PIRAMIDEN_LOG_FORMAT)")
	fs.StringVar(&f.logFile, "log-file", "", "also log to this file (env: PIRAMIDEN_LOG_FILE)")
	fs.DurationVar(&f.reviewTimeout, "review-timeout", 0, "time to memorise the hand (env: PIRAMIDEN_REVIEW_TIMEOUT)")
	fs.DurationVar(&f.roundTimeout, "round-timeout", 0, "time to claim before auto-pass (env: PIRAMIDEN_ROUND_TIMEOUT)")

	fs.VisitAll(func(fl *pflag.Flag) {
		_ = v.BindPFlag(fl.Name, fl)
		_ = v.BindEnv(fl.Name)
		if !fl.Changed && v.IsSet(fl.Name) {
			_ = fs.Set(fl.Name, fmt.Sprintf("%v", v.Get(fl.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("piramiden {{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

// loadConfig reads the config file and lets set flags win
func loadConfig(fs *pflag.FlagSet, f *flags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		cfg = config.Default()
	case err != nil:
		return nil, err
	}

	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("host", func() { cfg.Server.Host = f.host })
	set("port", func() { cfg.Server.Port = f.port })
	set("public-url", func() { cfg.Server.PublicURL = f.publicURL })
	set("redis-addr", func() { cfg.Redis.Addr = f.redisAddr })
	set("log-level", func() { cfg.Log.Level = f.logLevel })
	set("log-format", func() { cfg.Log.Format = f.logFormat })
	set("log-file", func() { cfg.Log.File = f.logFile })
	set("review-timeout", func() { cfg.Game.ReviewTimeout = int(f.reviewTimeout.Seconds()) })
	set("round-timeout", func() { cfg.Game.RoundTimeout = int(f.roundTimeout.Seconds()) })

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", cfg.Server.Port)
	}
	if cfg.Game.ReviewTimeout < 1 || cfg.Game.RoundTimeout < 1 {
		return nil, errors.New("review and round timeouts must be at least one second")
	}
	return cfg, nil
}

func run(cfg *config.Config) error {
	if err := logger.Init(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	}); err != nil {
		return err
	}
	defer logger.Close()

	if !strings.EqualFold(cfg.Log.Level, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		<-quit
		// a second signal kills the process
		signal.Reset(syscall.SIGINT, syscall.SIGTERM)
		logger.LogInfo("🛑 shutting down, waiting up to %v for running games", cfg.Game.ShutdownTimeoutDuration())
		srv.GracefulShutdown(cfg.Game.ShutdownTimeoutDuration())
		close(done)
	}()

	logger.LogInfo("🎮 piramiden %s starting...", version)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	<-done
	return nil
}
