package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/lfx/internal/server"
	"github.com/desertthunder/lfx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP API until interrupted.
//
// Without an API key the read endpoints are served and imports answer 503.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.openCatalog()
	if err != nil {
		return err
	}

	var importer tasks.Importer
	if engine, err := r.importer(); err != nil {
		r.logger.Warn("imports disabled", "error", err)
	} else {
		importer = engine
	}

	addr := r.serveAddr(cmd)
	logger := r.logger.With("component", "server")
	handler := server.NewCatalogHandler(catalog, importer, logger)
	router := server.NewRouter(handler, logger)
	logger.Debug("registered routes", "routes", router.Routes())
	srv := server.NewHTTPServer(addr, router)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.ListenAndServe(ctx, srv, logger)
}

func (r *Runner) serveAddr(cmd *cli.Command) string {
	host := r.config.Server.Host
	port := r.config.Server.Port
	if cmd.IsSet("host") {
		host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		port = cmd.Int("port")
	}
	return fmt.Sprintf("%s:%d", host, port)
}
