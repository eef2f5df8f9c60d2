// Package ingress exposes the local LM API under a public URL through an
// ngrok tunnel, optionally gated by a basic-auth or OAuth traffic policy.
package ingress

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokconfig "golang.ngrok.com/ngrok/config"

	"github.com/soundprobe/soundprobe/internal/config"
)

// Launcher opens exactly one forwarding listener to the local service.
type Launcher struct {
	cfg config.Ingress
}

// New creates a launcher for the given ingress configuration.
func New(cfg config.Ingress) *Launcher {
	return &Launcher{cfg: cfg}
}

// Run establishes the tunnel, prints the public URL, and blocks until the
// context is cancelled. Failure to establish the tunnel is fatal; there is no
// retry.
func (l *Launcher) Run(ctx context.Context) error {
	log := zap.S().Named("ingress")

	if l.cfg.Authtoken == "" {
		return errors.New("NGROK_AUTHTOKEN is not set")
	}

	policy, err := TrafficPolicy(l.cfg)
	if err != nil {
		return err
	}

	opts := []ngrokconfig.HTTPEndpointOption{}
	if l.cfg.Domain != "" {
		opts = append(opts, ngrokconfig.WithDomain(l.cfg.Domain))
	}
	if policy != "" {
		opts = append(opts, ngrokconfig.WithTrafficPolicy(policy))
	} else {
		log.Warn("no AUTH_USERNAME/AUTH_PASSWORD or OAUTH_PROVIDER configured; the public endpoint will be UNAUTHENTICATED")
	}

	backend, err := url.Parse(fmt.Sprintf("http://localhost:%d", l.cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to build backend url: %w", err)
	}

	fwd, err := ngrok.ListenAndForward(ctx, backend,
		ngrokconfig.HTTPEndpoint(opts...),
		ngrok.WithAuthtoken(l.cfg.Authtoken),
	)
	if err != nil {
		return fmt.Errorf("failed to establish tunnel: %w", err)
	}

	fmt.Printf("Ingress established at %s\n", fwd.URL())

	go func() {
		<-ctx.Done()
		fwd.Close()
	}()

	err = fwd.Wait()
	if ctx.Err() != nil {
		fmt.Println("Closing listener")
		return nil
	}
	return err
}
