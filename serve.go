package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/soar/padlink/internal/auth"
	"github.com/soar/padlink/internal/config"
	"github.com/soar/padlink/internal/connection"
	"github.com/soar/padlink/internal/control"
	"github.com/soar/padlink/internal/gamepad"
	"github.com/soar/padlink/internal/gamepad/sdlreader"
	"github.com/soar/padlink/internal/hub"
	"github.com/soar/padlink/internal/input"
	"github.com/soar/padlink/internal/method"
	"github.com/soar/padlink/internal/notify"
	"github.com/soar/padlink/internal/server"
	"github.com/soar/padlink/internal/translator"
	"github.com/soar/padlink/internal/tray"
)

func newSubsystem(cfg *config.Config) input.Subsystem {
	switch cfg.Input.Backend {
	case config.BackendSDL:
		return sdlreader.NewReader(cfg.Input.Deadzone, cfg.Log.Verbose)
	case config.BackendJoydev:
		return gamepad.NewJoydev(cfg.Input.Device, cfg.Input.Deadzone, cfg.Log.Verbose)
	}
	return nil
}

func serve(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)

	conn := connection.New()
	defer conn.Close()

	controls := control.NewSet()
	methods := method.NewDispatcher(conn, controls)
	if cfg.Endpoint.Address != "" {
		if resp := methods.Dispatch(method.SetAddressCall(cfg.Endpoint.Address, cfg.Endpoint.Port)); !resp.OK() {
			log.Printf("Warning: initial endpoint %s:%d: %s", cfg.Endpoint.Address, cfg.Endpoint.Port, resp.Error.Message)
		}
	}
	forwarder := control.NewForwarder(controls, conn)

	var tr *translator.Translator
	status := func() hub.Status {
		st := hub.Status{Translator: translator.StateDisabled.String()}
		if tr != nil {
			st.Translator = tr.State().String()
		}
		if ep, ok := conn.Endpoint(); ok {
			st.Endpoint = ep
		}
		return st
	}

	h := hub.NewHub()
	go h.Run(ctx)
	broadcaster := hub.NewBroadcaster(h, status)

	if sub := newSubsystem(cfg); sub != nil {
		tr = translator.New(sub,
			translator.WithSink(forwarder.Emit),
			translator.WithSink(broadcaster.Emit),
			translator.WithPollInterval(cfg.Input.PollInterval),
			translator.WithVerbose(cfg.Log.Verbose),
		)
	} else {
		log.Println("Input backend disabled")
	}
	go broadcaster.Run(ctx)

	if tr != nil {
		if err := tr.Start(ctx); err != nil {
			log.Printf("Input translator disabled: %v", err)
			if cfg.Notify.Desktop {
				notifyDisabled(err)
			}
		}
		defer tr.Stop()
	}

	var verifier *auth.Verifier
	if cfg.Auth.Secret != "" {
		v, err := auth.NewVerifier(cfg.Auth.Secret)
		if err != nil {
			return err
		}
		verifier = v
		log.Println("WebSocket token authentication enabled")
	}

	assets, err := server.LoadAssets(getFrontendFS())
	if err != nil {
		return fmt.Errorf("load console assets: %w", err)
	}

	dispatcher := hub.NewPublishingDispatcher(methods, broadcaster)
	srv := server.New(h, broadcaster, dispatcher, assets, verifier, cfg.Listen)
	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	url := server.ConsoleURL(cfg.Listen)
	log.Printf("padlink started: %s", url)

	// Channel for tray-triggered shutdown
	shutdownRequested := make(chan struct{})

	var t *tray.Tray
	if cfg.Tray.Enabled {
		t = tray.New(url, tray.Actions{
			ResetAddress: func() {
				dispatcher.Dispatch(method.Call{Method: method.CommandResetAddress.String()})
			},
			Shutdown: func() {
				close(shutdownRequested)
			},
		})
		go t.Run(tray.GetIcon())
	} else {
		log.Println("Press Ctrl+C to exit")
	}

	var runErr error
	select {
	case <-sigCh:
		log.Println("Shutting down...")
	case <-shutdownRequested:
		log.Println("Shutdown requested from tray")
	case err := <-serverErrCh:
		runErr = fmt.Errorf("HTTP server: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	cancel()

	if t != nil {
		t.Quit()
	}

	log.Println("padlink stopped")
	return runErr
}

func notifyDisabled(cause error) {
	n, err := notify.New()
	if err != nil {
		log.Printf("Desktop notification unavailable: %v", err)
		return
	}
	defer n.Close()
	if _, err := n.Notify("padlink: gamepad input disabled", cause.Error()); err != nil {
		log.Printf("Desktop notification failed: %v", err)
	}
}
