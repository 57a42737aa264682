package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/soar/padlink/internal/auth"
	"github.com/soar/padlink/internal/config"
	"github.com/soar/padlink/internal/remote"
)

const (
	callTimeout  = 10 * time.Second
	cliTokenTTL  = time.Minute
	defaultTTL   = 24 * time.Hour
	cliTokenUser = "padlink-cli"
)

var errCallFailed = errors.New("call failed")

// clientToken signs a short-lived token when the daemon requires one.
func clientToken(cfg *config.Config) (string, error) {
	if cfg.Auth.Secret == "" {
		return "", nil
	}
	v, err := auth.NewVerifier(cfg.Auth.Secret)
	if err != nil {
		return "", err
	}
	return v.Sign(cliTokenUser, cliTokenTTL)
}

func dial(ctx context.Context, cfg *config.Config) (*remote.Client, error) {
	token, err := clientToken(cfg)
	if err != nil {
		return nil, err
	}
	return remote.Dial(ctx, cfg.Server, token)
}

func runCall(cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return errors.New("call: missing method name")
	}
	callArgs, err := remote.ParseArgs(args[1:])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	c, err := dial(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	resp, err := c.Call(ctx, args[0], callArgs)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	if !resp.OK() {
		return fmt.Errorf("%w: %s", errCallFailed, resp.Status)
	}
	return nil
}

func runWatch(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	dialCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	c, err := dial(dialCtx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	enc := json.NewEncoder(os.Stdout)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.Done():
			return remote.ErrClosed
		case msg := <-c.Events():
			if err := enc.Encode(msg); err != nil {
				return err
			}
		}
	}
}

func runToken(cfg *config.Config, args []string) error {
	if cfg.Auth.Secret == "" {
		return errors.New("token: auth.secret is not set")
	}
	ttl := defaultTTL
	if len(args) > 0 {
		d, err := time.ParseDuration(args[0])
		if err != nil {
			return fmt.Errorf("token: %w", err)
		}
		ttl = d
	}
	v, err := auth.NewVerifier(cfg.Auth.Secret)
	if err != nil {
		return err
	}
	token, err := v.Sign(cliTokenUser, ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
