package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/soundprobe/soundprobe/internal/ingress"
)

func newIngressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingress",
		Short: "Expose the local LM API under a public URL via an ngrok tunnel",
		Long: `Opens one forwarding listener to the local LM API port and prints the
publicly reachable URL. Credentials come from the environment (or .ngrok_env):
NGROK_AUTHTOKEN, NGROK_DOMAIN, and either AUTH_USERNAME/AUTH_PASSWORD for a
basic-auth traffic policy or OAUTH_PROVIDER for an oauth policy. With neither,
the endpoint is public and a warning is logged. Blocks until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port, _ := cmd.Flags().GetInt("port"); port != 0 {
				cfg.Ingress.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return ingress.New(cfg.Ingress).Run(ctx)
		},
	}
	cmd.Flags().Int("port", 0, "Local port to forward to (default: 8001)")
	return cmd
}
