// Package server exposes the websocket channel and the console page over HTTP.
package server

import (
	"context"
	"log"
	"net"
	"net/http"

	"github.com/soar/padlink/internal/auth"
	"github.com/soar/padlink/internal/hub"
)

type Server struct {
	hub         *hub.Hub
	broadcaster *hub.Broadcaster
	dispatcher  hub.Dispatcher
	assets      http.Handler
	verifier    *auth.Verifier
	addr        string
	httpServer  *http.Server
}

// New creates a server. A nil verifier leaves /ws open; a nil assets
// handler disables the console page.
func New(h *hub.Hub, b *hub.Broadcaster, d hub.Dispatcher, assets http.Handler, v *auth.Verifier, addr string) *Server {
	s := &Server{
		hub:         h,
		broadcaster: b,
		dispatcher:  d,
		assets:      assets,
		verifier:    v,
		addr:        addr,
	}
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	return s
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket endpoint
	mux.Handle("/ws", auth.Middleware(s.verifier, handleWebSocket(s.hub, s.broadcaster, s.dispatcher)))

	if s.assets != nil {
		mux.Handle("/", s.assets)
	}
	return mux
}

func (s *Server) ListenAndServe() error {
	log.Printf("HTTP server listening on %s", s.addr)
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on l.
func (s *Server) Serve(l net.Listener) error {
	log.Printf("HTTP server listening on %s", l.Addr())
	return s.httpServer.Serve(l)
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}

// ConsoleURL turns a listen address into a URL a local browser can open.
func ConsoleURL(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return "http://localhost:8080"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
