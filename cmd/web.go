// Copyright 2014 The Gogs Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"code.gitea.io/sessionvars/modules/log"
	"code.gitea.io/sessionvars/modules/nosql"
	session_module "code.gitea.io/sessionvars/modules/session"
	"code.gitea.io/sessionvars/modules/setting"
	"code.gitea.io/sessionvars/routers/web"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds the time running requests get to finish
const shutdownTimeout = 10 * time.Second

// cmdWeb represents the available web sub-command.
func cmdWeb() *cli.Command {
	return &cli.Command{
		Name:        "web",
		Usage:       "Start the session variables web server",
		Description: `The web server serves the variables of the session of each request under /api/session.`,
		Action:      runWeb,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   "",
				Usage:   "Temporary port number to prevent conflict",
			},
			&cli.StringFlag{
				Name:  "listen",
				Value: "",
				Usage: "Temporary listen address, overrides HTTP_ADDR",
			},
		},
	}
}

func runWeb(ctx context.Context, cmd *cli.Command) error {
	if cmd.IsSet("port") {
		setting.HTTPPort = cmd.String("port")
	}
	if cmd.IsSet("listen") {
		setting.HTTPAddr = cmd.String("listen")
	}

	provider, err := session_module.NewProviderFromSetting(ctx)
	if err != nil {
		return fmt.Errorf("unable to init session variables storage: %w", err)
	}
	defer closeProvider()

	listener, err := net.Listen("tcp", setting.ListenAddr())
	if err != nil {
		return fmt.Errorf("unable to listen on %s: %w", setting.ListenAddr(), err)
	}
	log.Info("Listen: http://%s", listener.Addr())
	return serveUntilDone(ctx, listener, web.Routes(provider))
}

func serveUntilDone(ctx context.Context, listener net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 30 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down the web server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("web server shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// closeProvider releases the redis connection held by a redis provider
func closeProvider() {
	if setting.SessionConfig.VariablesStorage != setting.VariablesStorageRedis {
		return
	}
	if err := nosql.GetManager().CloseRedisClient(setting.SessionConfig.VariablesConn); err != nil {
		log.Error("Unable to close redis connection: %v", err)
	}
}
