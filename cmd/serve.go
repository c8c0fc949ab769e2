// File: cmd/serve.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bigid-apps/quickstart/internal/observability"
	"github.com/bigid-apps/quickstart/internal/server"
	"github.com/bigid-apps/quickstart/internal/service"
)

func newServeCmd() *cobra.Command {
	var (
		appName string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an app to BigID until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("app") {
				cfg.SetServerApp(appName)
			}
			if cmd.Flags().Changed("port") {
				cfg.SetServerPort(port)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger := observability.GetLogger()
			components, err := service.NewComponentFactory().Create(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			defer components.Shutdown()

			srv := server.New(server.Options{
				Config:     cfg.Server(),
				Controller: components.Controller,
				Metrics:    components.Metrics,
				LogFile:    observability.LogFile(),
				Logger:     logger,
			})
			logger.Info("Starting quickstart.", zap.String("version", Version), zap.String("address", cfg.Server().Addr()))
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&appName, "app", "", "app to serve: dspm or simple (overrides server.app)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides server.port and PORT)")
	return cmd
}
