package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"certachain/internal/config"
	"certachain/internal/services"
	"certachain/internal/storage"
	"certachain/pkg/rabbitmq"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "certachain",
		Short:         "Certificate issuance and verification service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "optional config file (yaml, json or toml)")

	root.AddCommand(newServeCmd(&configFile))
	root.AddCommand(newMigrateCmd())
	return root
}

func newServeCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.New(), *configFile)
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Config) error {
	store, err := storage.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}

	// --- Optional RabbitMQ Client ---
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		defer mqClient.Close()
		if err := mqClient.ConsumeCertificateEvents(rabbitmq.LogCertificateEvent); err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
		publisher = mqClient
	} else {
		log.Println("RABBITMQ_URL not set, certificate events are not published")
	}

	app, _, err := NewApp(cfg, store, publisher)
	if err != nil {
		return err
	}

	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(cfg.AppPort)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(config.ShutdownTimeout); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
	return nil
}

func newMigrateCmd() *cobra.Command {
	var fromDriver, fromDSN, toDriver, toDSN string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy every stored key from one storage backend to another",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := storage.Open(fromDriver, fromDSN)
			if err != nil {
				return fmt.Errorf("source: %w", err)
			}
			dst, err := storage.Open(toDriver, toDSN)
			if err != nil {
				return fmt.Errorf("destination: %w", err)
			}
			n, err := storage.Migrate(src, dst)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %d keys from %s to %s\n", n, fromDriver, toDriver)
			return nil
		},
	}
	cmd.Flags().StringVar(&fromDriver, "from-driver", storage.DriverSQLite, "source driver (sqlite, postgres)")
	cmd.Flags().StringVar(&fromDSN, "from-dsn", "", "source file path or connection string")
	cmd.Flags().StringVar(&toDriver, "to-driver", storage.DriverPostgres, "destination driver (sqlite, postgres)")
	cmd.Flags().StringVar(&toDSN, "to-dsn", "", "destination file path or connection string")
	_ = cmd.MarkFlagRequired("from-dsn")
	_ = cmd.MarkFlagRequired("to-dsn")
	return cmd
}
