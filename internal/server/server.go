package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/Rohitrajak1807/tinyhttpd/internal/handler"
)

// ConnHandler handles the single request carried by a connection.
type ConnHandler interface {
	Serve(ctx context.Context, rw io.ReadWriter) (handler.Outcome, error)
}

type Config struct {
	// ReadTimeout bounds reading the request, counted from accept, and each
	// response write on its own. Time spent in a CGI program is not charged
	// against it.
	ReadTimeout time.Duration
	// AcceptRate is in connections per second; zero disables limiting.
	AcceptRate  float64
	AcceptBurst int
}

// Server accepts connections and handles them one at a time.
type Server struct {
	handler     ConnHandler
	limiter     *rate.Limiter
	readTimeout time.Duration
	stats       *Stats
}

func New(cfg Config, h ConnHandler) *Server {
	limit := rate.Inf
	if cfg.AcceptRate > 0 {
		limit = rate.Limit(cfg.AcceptRate)
	}
	burst := cfg.AcceptBurst
	if burst < 1 {
		burst = 1
	}
	return &Server{
		handler:     h,
		limiter:     rate.NewLimiter(limit, burst),
		readTimeout: cfg.ReadTimeout,
		stats:       NewStats(),
	}
}

func (s *Server) Stats() *Stats { return s.stats }

// Serve runs the accept loop until ctx is cancelled, then closes ln and
// returns nil. Any other listener failure is returned.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	slog.Info("server started", "addr", ln.Addr())
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "accept limiter")
		}
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return errors.Wrap(err, "accept")
			}
			slog.Error("cannot accept connection", errAttr(err))
			continue
		}
		s.stats.Accepted()
		s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	start := time.Now()
	remote := conn.RemoteAddr()
	defer conn.Close()
	defer func() {
		if r := recover(); r != nil {
			s.stats.Panicked()
			slog.Error("panic while serving connection", "remote", remote, "panic", r)
		}
	}()

	slog.Debug("got connection", "remote", remote)
	var rw io.ReadWriter = conn
	if s.readTimeout > 0 {
		if err := conn.SetReadDeadline(start.Add(s.readTimeout)); err != nil {
			slog.Error("cannot set deadline", "remote", remote, errAttr(err))
			return
		}
		rw = deadlineConn{Conn: conn, timeout: s.readTimeout}
	}

	outcome, err := s.handler.Serve(ctx, rw)
	elapsed := time.Since(start)
	s.stats.Record(outcome, elapsed)
	if err != nil {
		slog.Warn("connection ended with error", "remote", remote, "outcome", outcome, errAttr(err))
		return
	}
	slog.Info("response sent", "remote", remote, "outcome", outcome, "elapsed", elapsed)
}

// deadlineConn renews the write deadline before every write.
type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (c deadlineConn) Write(p []byte) (int, error) {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, errors.Wrap(err, "set write deadline")
	}
	return c.Conn.Write(p)
}

func errAttr(err error) slog.Attr {
	return slog.String("err", err.Error())
}
