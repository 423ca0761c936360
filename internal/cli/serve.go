package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/gridplot/pkg/buildinfo"
	"github.com/matzehuels/gridplot/pkg/cache"
	"github.com/matzehuels/gridplot/pkg/errors"
	"github.com/matzehuels/gridplot/pkg/pipeline"
	"github.com/matzehuels/gridplot/pkg/render/depgraph"
)

const (
	defaultAddr     = "127.0.0.1:8080"
	shutdownTimeout = 5 * time.Second
	requestTimeout  = time.Minute
)

// serveOpts holds the flags of the serve command.
type serveOpts struct {
	addr    string
	redis   string
	noCache bool
}

// serveCommand creates the serve command for the HTTP preview service.
func (c *CLI) serveCommand() *cobra.Command {
	so := serveOpts{addr: defaultAddr}

	cmd := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Serve rendered layouts of a directory of documents over HTTP",
		Long: `Serve rendered layouts of a directory of documents over HTTP.

Every *.toml file in dir is addressable by its base name:

  GET /docs                          list documents
  GET /docs/{name}/render.{format}   render (svg, png, pdf, json, dot)
  GET /docs/{name}/layout            resolved layout as JSON
  GET /docs/{name}/hit?x=&y=         cell and hot line under a pixel
  GET /docs/{name}/deps.{format}     position graph (dot, svg)

Render accepts grid, scale, background, width, height and em query
parameters. Artifacts are cached on disk, or in Redis with --redis so that
several instances share one cache.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			return c.runServe(cmd.Context(), root, so)
		},
	}

	cmd.Flags().StringVar(&so.addr, "addr", so.addr, "listen address")
	cmd.Flags().StringVar(&so.redis, "redis", "", "Redis address or URL for the shared artifact cache")
	cmd.Flags().BoolVar(&so.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, root string, so serveOpts) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}

	runner, err := c.newServeRunner(ctx, so)
	if err != nil {
		return err
	}
	defer runner.Close()

	s := &server{root: root, runner: runner, logger: c.Logger}
	srv := &http.Server{
		Addr:              so.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	printSuccess("Serving %s", root)
	printKeyValue("address", "http://"+so.addr)
	printKeyValue("documents", strconv.Itoa(len(s.documents())))

	if err := g.Wait(); err != nil {
		return err
	}
	c.Logger.Info("server stopped")
	return nil
}

// newServeRunner picks the artifact cache: Redis when asked for, the
// file cache otherwise.
func (c *CLI) newServeRunner(ctx context.Context, so serveOpts) (*pipeline.Runner, error) {
	if so.redis == "" || so.noCache {
		return c.newRunner(so.noCache)
	}
	rc, err := cache.NewRedisCache(ctx, so.redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	c.Logger.Info("using redis cache", "addr", so.redis)
	keyer := cache.NewScopedKeyer(nil, buildinfo.CacheScope())
	return pipeline.NewRunner(rc, keyer, c.Logger), nil
}

// =============================================================================
// server - HTTP handlers
// =============================================================================

type server struct {
	root   string
	runner *pipeline.Runner
	logger *log.Logger
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})
	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, buildinfo.Get())
	})
	r.Get("/docs", s.handleList)
	r.Route("/docs/{name}", func(r chi.Router) {
		r.Get("/render.{format}", s.handleRender)
		r.Get("/layout", s.handleLayout)
		r.Get("/hit", s.handleHit)
		r.Get("/deps.{format}", s.handleDeps)
	})
	return r
}

// logRequests logs each request through the server's logger and makes the
// logger available to handlers through the request context.
func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(withLogger(r.Context(), s.logger)))
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Millisecond),
			"id", middleware.GetReqID(r.Context()))
	})
}

// documents lists the base names of the documents under root.
func (s *server) documents() []string {
	matches, _ := filepath.Glob(filepath.Join(s.root, "*"+docExt))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), docExt))
	}
	sort.Strings(names)
	return names
}

func (s *server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"documents": s.documents()})
}

// options builds pipeline options for the document named in the route.
func (s *server) options(r *http.Request) (pipeline.Options, error) {
	name := chi.URLParam(r, "name")
	if err := errors.ValidateName(name); err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.Options{
		Path:   filepath.Join(s.root, name+docExt),
		Logger: loggerFromContext(r.Context()),
	}
	q := r.URL.Query()
	var err error
	if opts.Width, err = intParam(q.Get("width")); err != nil {
		return opts, err
	}
	if opts.Height, err = intParam(q.Get("height")); err != nil {
		return opts, err
	}
	if opts.EmSize, err = floatParam(q.Get("em")); err != nil {
		return opts, err
	}
	return opts, nil
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		writeError(w, err)
		return
	}
	format := strings.ToLower(chi.URLParam(r, "format"))
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	opts.Formats = []string{format}
	opts.Grid = boolParam(q.Get("grid"))
	opts.Refresh = boolParam(q.Get("refresh"))
	opts.Background = q.Get("background")
	if opts.Scale, err = floatParam(q.Get("scale")); err != nil {
		writeError(w, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", pipeline.ContentType(format))
	if result.CacheInfo.RenderHit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	w.Write(result.Artifacts[format])
}

func (s *server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		writeError(w, err)
		return
	}
	l, _, err := s.runner.ResolveLayout(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *server) handleHit(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	x, errX := strconv.Atoi(q.Get("x"))
	y, errY := strconv.Atoi(q.Get("y"))
	if errX != nil || errY != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "x and y must be integers"))
		return
	}

	scene, err := buildScene(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	defer scene.Close()
	writeJSON(w, http.StatusOK, hitTest(scene.Canvas, x, y))
}

func (s *server) handleDeps(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		writeError(w, err)
		return
	}
	l, _, err := s.runner.ResolveLayout(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	dot := depgraph.ToDOT(l, depgraph.Options{Detailed: boolParam(r.URL.Query().Get("detailed"))})

	switch format := chi.URLParam(r, "format"); format {
	case pipeline.FormatDOT:
		w.Header().Set("Content-Type", pipeline.ContentType(format))
		w.Write([]byte(dot))
	case pipeline.FormatSVG:
		svg, err := depgraph.RenderSVG(dot)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", pipeline.ContentType(format))
		w.Write(svg)
	default:
		writeError(w, errors.New(errors.ErrCodeInvalidFormat, "unsupported graph format: %q", format))
	}
}

// =============================================================================
// Helpers
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// errorBody is the JSON shape of a failed request.
type errorBody struct {
	Code  errors.Code `json:"code,omitempty"`
	Error string      `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, httpStatus(err), errorBody{Code: errors.GetCode(err), Error: errors.UserMessage(err)})
}

// httpStatus maps error codes to HTTP status codes.
func httpStatus(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeFileNotFound, errors.ErrCodeNotFound,
		errors.ErrCodePositionNotFound, errors.ErrCodeComponentNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidDocument,
		errors.ErrCodeInvalidName, errors.ErrCodeInvalidSize, errors.ErrCodeConstraintParse,
		errors.ErrCodeCycle, errors.ErrCodeDuplicateName, errors.ErrCodeInvalidDataRange:
		return http.StatusBadRequest
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid integer %q", s)
	}
	return v, nil
}

func floatParam(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid number %q", s)
	}
	return v, nil
}

func boolParam(s string) bool {
	v, _ := strconv.ParseBool(s)
	return v
}
