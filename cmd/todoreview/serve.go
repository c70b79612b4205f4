package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/singleflight"

	"github.com/phyten/todoreview/internal/engine"
	engineopts "github.com/phyten/todoreview/internal/engine/opts"
	"github.com/phyten/todoreview/internal/fsys"
	"github.com/phyten/todoreview/internal/logger"
	"github.com/phyten/todoreview/internal/output"
	"github.com/phyten/todoreview/internal/web"
)

type serveFlags struct {
	configFlags
	addr         string
	open         bool
	allowAnyRoot bool
}

func newServeCommand(a *app) *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve [roots...]",
		Short: "Serve scan results over HTTP",
		Long: `serve hosts a small web UI at / on top of GET /api/scan, which accepts the same settings as the CLI as
query parameters (root, tag, marker, exclude, include, preset, priority_pattern,
case_sensitive, max_file_bytes, output) and returns the result as JSON by
default. The positional roots are both the default scan roots and the only
trees a request may scan unless --allow-any-root is given.`,
		Example: `  todoreview serve . --addr 127.0.0.1:8080
  curl 'http://127.0.0.1:8080/api/scan?tag=NOTE&exclude=vendor'`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, a, f, args)
		},
	}
	f.configFlags.register(cmd)
	fl := cmd.Flags()
	fl.StringVar(&f.addr, "addr", "127.0.0.1:8080", "listen address")
	fl.BoolVar(&f.open, "open", false, "open the web UI in a browser once listening")
	fl.BoolVar(&f.allowAnyRoot, "allow-any-root", false, "let requests scan paths outside the served roots")
	return cmd
}

func runServe(cmd *cobra.Command, a *app, f *serveFlags, args []string) error {
	flagLayer, err := f.layer(cmd, args)
	if err != nil {
		return err
	}
	s, err := resolveSettings(a, f.configPath, flagLayer)
	if err != nil {
		return err
	}

	srv := newScanServer(cmd.Context(), a, s.scan, s.log)
	srv.allowAnyRoot = f.allowAnyRoot

	ln, err := net.Listen("tcp", f.addr)
	if err != nil {
		return err
	}
	httpSrv := &http.Server{
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	url := fmt.Sprintf("http://%s/", ln.Addr())
	s.log.Infof("%s serve listening on %s (roots=%v)", appName, ln.Addr(), s.scan.Roots)
	fmt.Fprintf(a.stderr, "%s: listening on %s\n", appName, url)
	if f.open && a.openURL != nil {
		if err := a.openURL(url); err != nil {
			s.log.Warnf("%s: failed to open browser: %v", appName, err)
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.Serve(ln) }()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-cmd.Context().Done():
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(ctx)
	}
}

// scanServer answers HTTP scan requests. Identical concurrent requests share
// one scan.
type scanServer struct {
	ctx          context.Context
	app          *app
	defaults     engine.Config
	allowed      []string
	allowAnyRoot bool
	log          logger.Logger
	group        singleflight.Group
}

func newScanServer(ctx context.Context, a *app, defaults engine.Config, log logger.Logger) *scanServer {
	if log == nil {
		log = logger.Nop()
	}
	s := &scanServer{ctx: ctx, app: a, defaults: defaults, log: log}
	for _, root := range defaults.Roots {
		s.allowed = append(s.allowed, s.absRoot(root))
	}
	return s
}

func (s *scanServer) routes() http.Handler {
	mux := http.NewServeMux()
	web.Register(mux, web.Info{
		Version:   version,
		Roots:     s.defaults.Roots,
		Tags:      engineopts.TagsOf(s.defaults.Markers),
		Preset:    string(s.defaults.Preset),
		Languages: s.defaults.Languages,
		APIPath:   "/api/scan",
	})
	mux.HandleFunc("GET /api/scan", s.handleScan)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

type apiError struct {
	Error string      `json:"error"`
	Kind  engine.Kind `json:"kind,omitempty"`
	Field string      `json:"field,omitempty"`
}

func (s *scanServer) handleScan(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := "json"
	if raw := q.Get("output"); raw != "" {
		f, err := engineopts.NormalizeOutput(raw)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, err)
			return
		}
		format = f
	}

	cfg, err := engineopts.ApplyWebQuery(s.defaults, q)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, err)
		return
	}
	if err := engineopts.NormalizeAndValidate(&cfg); err != nil {
		writeAPIError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.checkRoots(cfg.Roots); err != nil {
		writeAPIError(w, http.StatusForbidden, err)
		return
	}

	key, err := json.Marshal(cfg)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, err)
		return
	}
	runOpts := engine.Options{
		FS:      s.app.fs,
		Logger:  s.log,
		Home:    s.app.home,
		WorkDir: s.app.cwd,
		LogTag:  appName,
	}
	if !s.allowAnyRoot {
		runOpts.FileGuard = s.isAllowed
	}
	v, err, shared := s.group.Do(string(key), func() (any, error) {
		return engine.Run(s.ctx, cfg, runOpts)
	})
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, err)
		return
	}
	res := v.(*engine.Result)
	if shared {
		s.log.Debugf("%s: request shared session %s", appName, res.SessionID)
	}

	w.Header().Set("Content-Type", contentType(format))
	if err := output.Render(w, res, output.Options{Format: format, ShowLine: true}); err != nil {
		s.log.Warnf("%s: failed to write response: %v", appName, err)
	}
}

// checkRoots rejects roots that are not inside one of the served roots. Files
// reached through symlinks are checked separately by the walker's guard.
func (s *scanServer) checkRoots(roots []string) error {
	if s.allowAnyRoot {
		return nil
	}
	for _, root := range roots {
		abs := s.absRoot(root)
		if !s.isAllowed(abs) {
			return fmt.Errorf("root %q is outside the served roots", root)
		}
	}
	return nil
}

func (s *scanServer) isAllowed(abs string) bool {
	for _, base := range s.allowed {
		if abs == base {
			return true
		}
		rel, err := filepath.Rel(base, abs)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// absRoot resolves root the way the walker does, so a symlink inside a
// served root cannot point a request elsewhere.
func (s *scanServer) absRoot(root string) string {
	abs := fsys.Abs(fsys.ExpandHome(root, s.app.home), s.app.cwd)
	if resolved, err := fsys.Realpath(s.app.fs, abs); err == nil {
		return resolved
	}
	return filepath.Clean(abs)
}

func writeAPIError(w http.ResponseWriter, status int, err error) {
	body := apiError{Error: err.Error()}
	var cfgErr *engine.ConfigurationError
	if errors.As(err, &cfgErr) {
		body.Kind = cfgErr.Kind()
		body.Field = cfgErr.Field
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func contentType(format string) string {
	switch format {
	case "json":
		return "application/json"
	case "ndjson":
		return "application/x-ndjson"
	case "csv":
		return "text/csv; charset=utf-8"
	case "markdown":
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}
