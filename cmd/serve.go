package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	applog "github.com/spigell/edumatch/internal/logger"
	"github.com/spigell/edumatch/internal/server"
)

const defaultListen = ":8080"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the eligibility engine over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("listen", defaultListen, "address to listen on")
	serveCmd.Flags().Int("workers", 0, "concurrent evaluations per request (default is the number of CPUs)")

	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("filter.workers", serveCmd.Flags().Lookup("workers"))
}

func serve() {
	logger, err := applog.New(applog.Options{
		JSON:      viper.GetBool("json"),
		Debug:     viper.GetBool("debug"),
		Component: "serve",
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getServeConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting the edumatch server", zap.String("version", version), zap.String("listen", config.Server.Listen))

	if err := server.New(logger, config.Filter.Workers).Run(ctx, config.Server.Listen); err != nil {
		logger.Fatal("serving", zap.Error(err))
	}

	logger.Info("server stopped")
}

// getServeConfig reads only the filter and server sections.
func getServeConfig() (*Config, error) {
	config := &Config{
		Filter: &FilterConfig{},
		Server: &ServerConfig{},
	}

	if err := viper.UnmarshalKey("filter", config.Filter); err != nil {
		return nil, err
	}
	if err := viper.UnmarshalKey("server", config.Server); err != nil {
		return nil, err
	}

	if config.Server.Listen == "" {
		config.Server.Listen = defaultListen
	}

	if err := newValidator().Struct(config.Filter); err != nil {
		return nil, err
	}
	if err := newValidator().Struct(config.Server); err != nil {
		return nil, err
	}

	return config, nil
}
