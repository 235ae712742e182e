package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pet-adoption/internal/config"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/router"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "seed",
		Short:         "Carga o borra los datos de ejemplo del store configurado",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "archivo .env opcional")

	root.AddCommand(newImportCmd(&envFile), newDestroyCmd(&envFile))
	return root
}

func newImportCmd(envFile *string) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Vacía el store e importa los fixtures",
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw := defaultFixtures
			if file != "" {
				b, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				raw = b
			}
			fx, err := parseFixtures(raw)
			if err != nil {
				return err
			}

			return withStores(cmd.Context(), *envFile, func(ctx context.Context, st router.Stores, log logger.Logger) error {
				sum, err := importFixtures(ctx, st, fx, bcrypt.DefaultCost, log)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d users, %d pets, %d applications into %s\n",
					sum.Users, sum.Pets, sum.Applications, st.Backend)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "fixtures YAML (default: embebidos)")
	return cmd
}

func newDestroyCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "destroy",
		Short: "Borra usuarios, mascotas y solicitudes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStores(cmd.Context(), *envFile, func(ctx context.Context, st router.Stores, log logger.Logger) error {
				if err := st.Reset(ctx); err != nil {
					return err
				}
				log.Info("all data deleted", map[string]any{"backend": st.Backend})
				return nil
			})
		},
	}
}

func withStores(ctx context.Context, envFile string, fn func(context.Context, router.Stores, logger.Logger) error) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName + "-seed",
	})

	st, err := router.OpenStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close(context.Background()) }()

	return fn(ctx, st, log)
}
