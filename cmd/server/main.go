package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	serve := func(cmd *cobra.Command, args []string) error {
		gin.SetMode(gin.ReleaseMode)
		app, cleanup, err := InitializeApp(ConfigPath(configPath))
		if err != nil {
			return fmt.Errorf("initializing app: %w", err)
		}
		defer cleanup()
		return app.Run()
	}

	cmd := &cobra.Command{
		Use:           "bounty-server",
		Short:         "Bounty task workflow server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/server.yaml", "path to config file")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and gRPC server",
		RunE:  serve,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := InitializeApp(ConfigPath(configPath))
			if err != nil {
				return fmt.Errorf("initializing app: %w", err)
			}
			defer cleanup()
			return app.Migrate(cmd.Context())
		},
	})

	var username, password string
	createAdmin := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := InitializeApp(ConfigPath(configPath))
			if err != nil {
				return fmt.Errorf("initializing app: %w", err)
			}
			defer cleanup()
			return app.CreateAdmin(cmd.Context(), username, password)
		},
	}
	createAdmin.Flags().StringVar(&username, "username", "", "admin username")
	createAdmin.Flags().StringVar(&password, "password", "", "admin password")
	_ = createAdmin.MarkFlagRequired("username")
	_ = createAdmin.MarkFlagRequired("password")
	cmd.AddCommand(createAdmin)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("bounty-server version %s (built at %s)\n", Version, BuildTime)
		},
	})

	cmd.SetContext(context.Background())
	return cmd
}
