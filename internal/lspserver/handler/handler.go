// Package handler ties the Store, Dispatcher, and Server together behind a
// single jsonrpc2.Handler-shaped entrypoint. Grounded on the embedded
// YAML language server's internal/xpls/handler package: a Handler owning both a dispatcher and a
// server, constructed together, with Handle doing nothing but delegate.
package handler

import (
	"context"

	"github.com/crossplane/crossplane-runtime/pkg/logging"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/gnlang/gnls/internal/lspserver/dispatcher"
	"github.com/gnlang/gnls/internal/lspserver/server"
	"github.com/gnlang/gnls/internal/store"
)

// Handler answers LSP requests over a jsonrpc2.Conn.
type Handler struct {
	log        logging.Logger
	dispatcher *dispatcher.Dispatcher
	server     *server.Server
}

// New constructs a new Handler backed by st.
func New(st *store.Store, opts ...Option) *Handler {
	h := &Handler{log: logging.NewNopLogger()}
	for _, o := range opts {
		o(h)
	}

	h.server = server.New(st, server.WithLogger(h.log))
	h.dispatcher = dispatcher.New(dispatcher.WithLogger(h.log))
	return h
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger overrides the Handler's logger (and the logger passed to the
// Server and Dispatcher it constructs).
func WithLogger(l logging.Logger) Option {
	return func(h *Handler) { h.log = l }
}

// Handle implements jsonrpc2.Handler by routing r through the Dispatcher.
func (h *Handler) Handle(ctx context.Context, conn *jsonrpc2.Conn, r *jsonrpc2.Request) {
	h.dispatcher.Dispatch(ctx, h.server, conn, r)
}
