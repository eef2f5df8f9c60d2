package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/soundprobe/soundprobe/internal/mockserver"
)

func newMockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Serve the deterministic stand-in LM API for local dry runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Mock.Addr = addr
			}
			if secret, _ := cmd.Flags().GetString("jwt-secret"); secret != "" {
				cfg.Mock.JWTSecret = secret
			}

			if cfg.Mock.JWTSecret != "" {
				token, err := mockserver.MintToken(cfg.Mock.JWTSecret, "soundprobe")
				if err != nil {
					return err
				}
				fmt.Printf("Bearer token for --api-key: %s\n", token)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return mockserver.New(cfg.Mock.Addr, cfg.Mock.JWTSecret).Start(ctx)
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default: :8001)")
	cmd.Flags().String("jwt-secret", "", "Require bearer tokens signed with this secret")
	return cmd
}
