package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorhandlers "github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/heavydata/dms/configuration"
	"github.com/heavydata/dms/handlers"
	"github.com/heavydata/dms/health"
	"github.com/heavydata/dms/internal/dcontext"
	"github.com/heavydata/dms/version"
)

// serveCmd is the cobra command that runs the dms server.
var serveCmd = &cobra.Command{
	Use:   "serve <config>",
	Short: "`serve` runs the dms server",
	Long:  "`serve` runs the dms server",
	Run: func(cmd *cobra.Command, args []string) {
		config, err := resolveConfiguration(args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
			// nolint:errcheck
			cmd.Usage()
			os.Exit(1)
		}

		server, err := newServer(dcontext.Background(), config)
		if err != nil {
			log.Fatalln(err)
		}

		if err := server.listenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalln(err)
		}
	},
}

// A Server is a complete instance of the dms server.
type Server struct {
	config *configuration.Configuration
	app    *handlers.App
	server *http.Server
}

// newServer creates a new server instance from a context and configuration
// struct.
func newServer(ctx context.Context, config *configuration.Configuration) (*Server, error) {
	ctx = dcontext.WithVersion(ctx, version.Version())

	ctx, err := configureLogging(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("error configuring logger: %v", err)
	}

	app := handlers.NewApp(ctx, config)
	app.RegisterHealthChecks()

	var handler http.Handler = app
	handler = alive("/", handler)
	handler = health.Handler(handler)
	handler = panicHandler(handler)
	handler = gorhandlers.CombinedLoggingHandler(os.Stdout, handler)

	return &Server{
		config: config,
		app:    app,
		server: &http.Server{
			Handler: handler,
		},
	}, nil
}

// listenAndServe runs the server until it errors or receives a termination
// signal, then drains in-flight requests within the configured timeout.
func (s *Server) listenAndServe() error {
	netw := s.config.HTTP.Net
	if netw == "" {
		netw = "tcp"
	}
	ln, err := net.Listen(netw, s.config.HTTP.Addr)
	if err != nil {
		return err
	}

	if s.config.HTTP.Debug.Addr != "" {
		go s.serveDebug(s.config.HTTP.Debug.Addr)
	}

	dcontext.GetLogger(s.app).Infof("listening on %v", ln.Addr())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.server.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		return err
	case sig := <-quit:
		dcontext.GetLogger(s.app).Infof("received signal %v, draining connections", sig)

		ctx := context.Background()
		if timeout := s.config.HTTP.DrainTimeout; timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return s.server.Shutdown(ctx)
	}
}

// serveDebug exposes the default mux on the debug address: expvar under
// /debug/vars, the health status under /debug/health, pprof under
// /debug/pprof and, when enabled, prometheus metrics.
func (s *Server) serveDebug(addr string) {
	if s.config.HTTP.Debug.Prometheus.Enabled {
		path := s.config.HTTP.Debug.Prometheus.Path
		if path == "" {
			path = "/metrics"
		}
		http.Handle(path, promhttp.Handler())
	}

	dcontext.GetLogger(s.app).Infof("debug server listening %v", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		dcontext.GetLogger(s.app).Fatalf("error listening on debug interface: %v", err)
	}
}

func resolveConfiguration(args []string) (*configuration.Configuration, error) {
	var configurationPath string

	if len(args) > 0 {
		configurationPath = args[0]
	} else if os.Getenv("DMS_CONFIGURATION_PATH") != "" {
		configurationPath = os.Getenv("DMS_CONFIGURATION_PATH")
	}

	if configurationPath == "" {
		return nil, fmt.Errorf("configuration path unspecified")
	}

	fp, err := os.Open(configurationPath)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	config, err := configuration.Parse(fp)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %v", configurationPath, err)
	}

	return config, nil
}

// configureLogging prepares the context with a logger using the
// configuration.
func configureLogging(ctx context.Context, config *configuration.Configuration) (context.Context, error) {
	log.SetLevel(logLevel(config.Log.Level))

	switch config.Log.Formatter {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	case "json":
		log.SetFormatter(&log.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	default:
		return ctx, fmt.Errorf("unsupported logging formatter: %q", config.Log.Formatter)
	}

	if config.Log.Formatter != "" {
		log.Debugf("using %q logging formatter", config.Log.Formatter)
	}

	if len(config.Log.Fields) > 0 {
		// build up the static fields, if present.
		var fields []interface{}
		for k := range config.Log.Fields {
			fields = append(fields, k)
		}

		ctx = dcontext.WithValues(ctx, config.Log.Fields)
		ctx = dcontext.WithLogger(ctx, dcontext.GetLogger(ctx, fields...))
	}

	return ctx, nil
}

func logLevel(level configuration.Loglevel) log.Level {
	l, err := log.ParseLevel(string(level))
	if err != nil {
		l = log.InfoLevel
		log.Warnf("error parsing level %q: %v, using %q", level, err, l)
	}

	return l
}

// panicHandler wraps the handler in a recover so a panicking request logs
// loudly instead of taking the process down.
func panicHandler(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Errorf("panic serving %s: %v", r.URL.Path, err)
				w.WriteHeader(http.StatusInternalServerError)
			}
		}()
		handler.ServeHTTP(w, r)
	})
}

// alive simply wraps the handler with a route that always returns an http 200
// response when the path is matched. If the path is not matched, the request
// is passed to the provided handler. There is no guarantee of anything but
// that the server is up. Wrap with other handlers (such as health.Handler)
// for greater affect.
func alive(path string, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == path {
			w.Header().Set("Cache-Control", "no-cache")
			w.WriteHeader(http.StatusOK)
			return
		}

		handler.ServeHTTP(w, r)
	})
}
