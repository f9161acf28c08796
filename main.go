package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Rohitrajak1807/tinyhttpd/internal/config"
	"github.com/Rohitrajak1807/tinyhttpd/internal/handler"
	"github.com/Rohitrajak1807/tinyhttpd/internal/server"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tinyhttpd",
		Short:         "Serve static files and CGI programs over HTTP/1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			return run(cmd.Context(), conf)
		},
	}
	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (default is ./tinyhttpd.yaml)")
	config.BindFlags(cmd.Flags())
	return cmd
}

func setupLogger(conf *config.Config) error {
	level, err := conf.Level()
	if err != nil {
		return err
	}
	h := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	})
	slog.SetDefault(slog.New(h))
	return nil
}

func run(ctx context.Context, conf *config.Config) error {
	if err := setupLogger(conf); err != nil {
		return err
	}

	h := handler.New(handler.Config{
		Root:            conf.Root,
		ServerName:      conf.ServerName,
		Welcome:         conf.Welcome,
		ReplyBadRequest: conf.ReplyBadRequest,
	}, handler.ExecRunner{Timeout: conf.CGITimeout})

	srv := server.New(server.Config{
		ReadTimeout: conf.ReadTimeout,
		AcceptRate:  conf.AcceptRate,
		AcceptBurst: conf.AcceptBurst,
	}, h)

	ln, err := net.Listen("tcp", conf.Listen)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", conf.Listen)
	}
	slog.Info("listening", "addr", conf.Listen, "root", conf.Root)

	err = srv.Serve(ctx, ln)
	srv.Stats().Log()
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("tinyhttpd failed", "err", err.Error())
		os.Exit(1)
	}
}
