package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/faturai/faturai/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP extraction service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, service, err := setup()
			if err != nil {
				return err
			}

			srv := server.New(service, cfg.ListenAddr, cfg.MaxFileSize,
				cfg.DefaultProvider, version, sloggerFor("server"))

			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().String("listen", ":8000", "listen address")
	_ = viper.BindPFlag("server.listen", cmd.Flags().Lookup("listen"))

	return cmd
}
