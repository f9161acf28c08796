package handler

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/Rohitrajak1807/tinyhttpd/internal/proto"
)

// Outcome classifies how a connection was handled.
type Outcome int

const (
	OutcomeClosed Outcome = iota
	OutcomeDropped
	OutcomeBadRequest
	OutcomeStatic
	OutcomeCGI
	OutcomeWelcome
	OutcomeNotFound
	OutcomeError
)

var outcomeNames = [...]string{
	OutcomeClosed:     "closed",
	OutcomeDropped:    "dropped",
	OutcomeBadRequest: "bad_request",
	OutcomeStatic:     "static",
	OutcomeCGI:        "cgi",
	OutcomeWelcome:    "welcome",
	OutcomeNotFound:   "not_found",
	OutcomeError:      "error",
}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return "outcome(" + strconv.Itoa(int(o)) + ")"
	}
	return outcomeNames[o]
}

const welcomePath = "/welcome"

type Config struct {
	Root            string
	ServerName      string
	Welcome         bool
	ReplyBadRequest bool
}

// Handler serves exactly one request per connection.
type Handler struct {
	cfg      Config
	runner   Runner
	okHeader []byte
}

func New(cfg Config, runner Runner) *Handler {
	return &Handler{
		cfg:      cfg,
		runner:   runner,
		okHeader: successHeader(cfg.ServerName),
	}
}

// Serve reads one request from rw and writes the response back. Malformed
// requests are dropped without a reply unless ReplyBadRequest is set.
func (h *Handler) Serve(ctx context.Context, rw io.ReadWriter) (Outcome, error) {
	req, err := proto.ReadRequest(proto.NewLineReader(rw))
	if err == io.EOF {
		return OutcomeClosed, nil
	}
	if err != nil {
		slog.Warn("failed to parse http request", errAttr(err))
		if h.cfg.ReplyBadRequest && (proto.IsSyntax(err) || proto.IsFraming(err)) {
			if outcome, werr := respond(rw, OutcomeBadRequest, badRequest); werr != nil {
				return outcome, werr
			}
			return OutcomeBadRequest, err
		}
		return OutcomeDropped, err
	}
	slog.Info("request", "method", req.Method(), "uri", req.URI())
	return h.Dispatch(ctx, rw, req)
}

// Dispatch routes req to the welcome page, a CGI program or a static file.
// POST and GET with a query string always go to CGI. Otherwise the target is
// opened once and its mode decides: any execute bit makes it a CGI program.
func (h *Handler) Dispatch(ctx context.Context, w io.Writer, req *proto.Request) (Outcome, error) {
	target := proto.ResolveTarget(req)

	if h.cfg.Welcome && target.Path == welcomePath {
		return respond(w, OutcomeWelcome, welcome)
	}

	path := ResolvePath(h.cfg.Root, target.Path)
	slog.Debug("resolved", "path", path, "cgi", target.HasArgs)
	if target.HasArgs {
		return h.serveCGI(ctx, w, req, target, path)
	}

	f, err := os.Open(path)
	if err != nil {
		slog.Error("failed to open", "path", path, errAttr(err))
		return respond(w, OutcomeNotFound, notFound)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		slog.Error("failed to stat", "path", path, errAttr(err))
		return respond(w, OutcomeNotFound, notFound)
	}
	if fi.IsDir() {
		slog.Error("not a regular file", "path", path)
		return respond(w, OutcomeNotFound, notFound)
	}
	if IsExecutable(fi.Mode()) {
		return h.serveCGI(ctx, w, req, target, path)
	}
	return h.serveStatic(w, f, path)
}

func (h *Handler) serveStatic(w io.Writer, f *os.File, path string) (Outcome, error) {
	body, err := io.ReadAll(f)
	if err != nil {
		slog.Error("failed to read", "path", path, errAttr(err))
		return respond(w, OutcomeError, internalError)
	}
	return respond(w, OutcomeStatic, h.okHeader, body)
}

func (h *Handler) serveCGI(ctx context.Context, w io.Writer, req *proto.Request, target proto.Target, path string) (Outcome, error) {
	var stdin []byte
	if req.Method() == proto.MethodPost {
		stdin = []byte(target.Args)
	}
	out, err := h.runner.Run(ctx, path, h.cgiEnv(req, target), stdin)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Error("cgi program not found", "path", path, errAttr(err))
			return respond(w, OutcomeNotFound, notFound)
		}
		slog.Error("cgi failed", "path", path, errAttr(err))
		if _, werr := respond(w, OutcomeError, internalError); werr != nil {
			return OutcomeError, werr
		}
		return OutcomeError, err
	}
	return respond(w, OutcomeCGI, h.okHeader, out)
}

// respond writes a complete response. A failed write turns the outcome into
// OutcomeError since the client saw nothing usable.
func respond(w io.Writer, outcome Outcome, chunks ...[]byte) (Outcome, error) {
	if err := writeAll(w, chunks...); err != nil {
		return OutcomeError, err
	}
	return outcome, nil
}

// errAttr logs err as its message only. pkg/errors values print their stack
// under %+v.
func errAttr(err error) slog.Attr {
	return slog.String("err", err.Error())
}

func (h *Handler) cgiEnv(req *proto.Request, target proto.Target) []string {
	env := []string{
		"GATEWAY_INTERFACE=CGI/1.1",
		"SERVER_SOFTWARE=" + h.cfg.ServerName,
		"SERVER_PROTOCOL=" + req.Version(),
		"REQUEST_METHOD=" + string(req.Method()),
		"QUERY_STRING=" + target.Args,
		"SCRIPT_NAME=" + target.Path,
	}
	if req.Method() == proto.MethodPost {
		env = append(env, "CONTENT_LENGTH="+strconv.Itoa(len(target.Args)))
	}
	if p := os.Getenv("PATH"); p != "" {
		env = append(env, "PATH="+p)
	}
	return env
}
