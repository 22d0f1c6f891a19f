package handlers

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	events "github.com/docker/go-events"
	"github.com/gorilla/mux"

	"github.com/heavydata/dms"
	"github.com/heavydata/dms/api/errcode"
	v1 "github.com/heavydata/dms/api/v1"
	"github.com/heavydata/dms/configuration"
	"github.com/heavydata/dms/health"
	"github.com/heavydata/dms/health/checks"
	"github.com/heavydata/dms/internal/dcontext"
	"github.com/heavydata/dms/notifications"
	"github.com/heavydata/dms/storage"
	"github.com/heavydata/dms/storage/cache"
	storagedriver "github.com/heavydata/dms/storage/driver"
	"github.com/heavydata/dms/storage/driver/factory"
)

// defaultCheckInterval is the default time in between health checks
const defaultCheckInterval = 10 * time.Second

// App is a global server application object. Shared resources can be placed
// on this object that will be accessible from all requests. Any writable
// fields should be protected.
type App struct {
	context.Context

	Config *configuration.Configuration

	router    *mux.Router
	driver    storagedriver.StorageDriver
	namespace dms.Namespace

	// events contains notification related configuration.
	events struct {
		sink   events.Sink
		source notifications.SourceRecord
	}
}

// NewApp takes a configuration and returns a configured app, ready to serve
// requests. The app only implements ServeHTTP and can be wrapped in other
// handlers accordingly.
func NewApp(ctx context.Context, config *configuration.Configuration) *App {
	app := &App{
		Config:  config,
		Context: ctx,
		router:  v1.RouterWithPrefix(config.HTTP.Prefix),
	}

	// Register the handler dispatchers.
	app.register(v1.RouteNameBase, func(ctx *Context, r *http.Request) http.Handler {
		return http.HandlerFunc(apiBase)
	})
	app.register(v1.RouteNameSchema, schemaDispatcher)
	app.register(v1.RouteNameCollections, collectionsDispatcher)
	app.register(v1.RouteNameObjects, objectsDispatcher)
	app.register(v1.RouteNameObjectList, objectListDispatcher)
	app.register(v1.RouteNameObject, objectDispatcher)
	app.register(v1.RouteNameAttribute, attributeDispatcher)

	var err error
	app.driver, err = factory.Create(config.Storage.Type(), config.Storage.Parameters())
	if err != nil {
		panic(err)
	}

	app.configureEvents(config)

	options := []storage.RegistryOption{}
	if cc := config.Cache.Type(); cc != "" {
		dc, err := cache.Get(app, cc, config.Cache.Parameters())
		if err != nil {
			panic("unable to configure document cache (" + cc + "): " + err.Error())
		}
		options = append(options, storage.WithDocumentCache(dc))
		dcontext.GetLogger(app).Infof("using %q document cache", cc)
	}

	app.namespace, err = storage.NewRegistry(app, app.driver, options...)
	if err != nil {
		panic("could not create namespace: " + err.Error())
	}

	return app
}

// RegisterHealthChecks is an awkward way to defer health check registration
// control to callers. This should only ever be called once per server
// process, typically from main.
func (app *App) RegisterHealthChecks(healthRegistries ...*health.Registry) {
	if len(healthRegistries) > 1 {
		panic("RegisterHealthChecks called with more than one registry")
	}
	healthRegistry := health.DefaultRegistry
	if len(healthRegistries) == 1 {
		healthRegistry = healthRegistries[0]
	}

	if app.Config.Health.StorageDriver.Enabled {
		interval := app.Config.Health.StorageDriver.Interval
		if interval == 0 {
			interval = defaultCheckInterval
		}

		storageDriverCheck := checks.StorageDriverChecker(app.driver, "/")

		updater := health.NewStatusUpdater()
		if t := app.Config.Health.StorageDriver.Threshold; t != 0 {
			updater = health.NewThresholdStatusUpdater(t)
		}
		healthRegistry.Register("storagedriver_"+app.Config.Storage.Type(), updater)
		go health.Poll(app, updater, storageDriverCheck, interval)
	}

	for _, fileChecker := range app.Config.Health.FileCheckers {
		interval := fileChecker.Interval
		if interval == 0 {
			interval = defaultCheckInterval
		}
		dcontext.GetLogger(app).Infof("configuring file health check path=%s, interval=%d", fileChecker.File, interval/time.Second)
		u := health.NewStatusUpdater()
		healthRegistry.Register(fileChecker.File, u)
		go health.Poll(app, u, checks.FileChecker(fileChecker.File), interval)
	}

	for _, httpChecker := range app.Config.Health.HTTPCheckers {
		interval := httpChecker.Interval
		if interval == 0 {
			interval = defaultCheckInterval
		}
		statusCode := httpChecker.StatusCode
		if statusCode == 0 {
			statusCode = http.StatusOK
		}
		checker := checks.HTTPChecker(httpChecker.URI, statusCode, httpChecker.Timeout, httpChecker.Headers)

		if httpChecker.Threshold != 0 {
			dcontext.GetLogger(app).Infof("configuring HTTP health check uri=%s, interval=%d, threshold=%d", httpChecker.URI, interval/time.Second, httpChecker.Threshold)
			u := health.NewThresholdStatusUpdater(httpChecker.Threshold)
			healthRegistry.Register(httpChecker.URI, u)
			go health.Poll(app, u, checker, interval)
		} else {
			dcontext.GetLogger(app).Infof("configuring HTTP health check uri=%s, interval=%d", httpChecker.URI, interval/time.Second)
			u := health.NewStatusUpdater()
			healthRegistry.Register(httpChecker.URI, u)
			go health.Poll(app, u, checker, interval)
		}
	}

	for _, tcpChecker := range app.Config.Health.TCPCheckers {
		interval := tcpChecker.Interval
		if interval == 0 {
			interval = defaultCheckInterval
		}
		dcontext.GetLogger(app).Infof("configuring TCP health check addr=%s, interval=%d", tcpChecker.Addr, interval/time.Second)
		u := health.NewStatusUpdater()
		healthRegistry.Register(tcpChecker.Addr, u)
		go health.Poll(app, u, checks.TCPChecker(tcpChecker.Addr, tcpChecker.Timeout), interval)
	}
}

// register a handler with the application, by route name. The handler will be
// passed through the application filters and context will be constructed at
// request time.
func (app *App) register(routeName string, dispatch dispatchFunc) {
	app.router.GetRoute(routeName).Handler(app.dispatcher(dispatch))
}

// configureEvents prepares the event sink for action.
func (app *App) configureEvents(configuration *configuration.Configuration) {
	// Configure all of the endpoint sinks.
	var sinks []events.Sink
	for _, endpoint := range configuration.Notifications.Endpoints {
		if endpoint.Disabled {
			dcontext.GetLogger(app).Infof("endpoint %s disabled, skipping", endpoint.Name)
			continue
		}

		dcontext.GetLogger(app).Infof("configuring endpoint %v (%v), timeout=%s, headers=%v", endpoint.Name, endpoint.URL, endpoint.Timeout, endpoint.Headers)
		endpoint := notifications.NewEndpoint(endpoint.Name, endpoint.URL, notifications.EndpointConfig{
			Timeout:        endpoint.Timeout,
			Threshold:      endpoint.Threshold,
			Backoff:        endpoint.Backoff,
			Headers:        endpoint.Headers,
			IgnoredActions: endpoint.IgnoredActions,
		})

		sinks = append(sinks, endpoint)
	}

	app.events.sink = events.NewBroadcaster(sinks...)

	// Populate the event source with the host the server answers on.
	hostname, err := os.Hostname()
	if err != nil {
		hostname = configuration.HTTP.Addr
	} else {
		// try to pick the port off the config
		_, port, err := net.SplitHostPort(configuration.HTTP.Addr)
		if err == nil {
			hostname = net.JoinHostPort(hostname, port)
		}
	}

	app.events.source = notifications.SourceRecord{
		Addr:       hostname,
		InstanceID: dcontext.GetStringValue(app, "instance.id"),
	}
}

func (app *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close() // ensure that request body is always closed.

	// Prepare the context with our own little decorations.
	ctx := r.Context()
	ctx = dcontext.WithRequest(ctx, r)
	ctx, w = dcontext.WithResponseWriter(ctx, w)
	ctx = dcontext.WithLogger(ctx, dcontext.GetRequestLogger(ctx))
	r = r.WithContext(ctx)

	defer func() {
		status, ok := ctx.Value("http.response.status").(int)
		if ok && status >= 200 && status <= 399 {
			dcontext.GetResponseLogger(r.Context()).Infof("response completed")
		}
	}()

	// Set a header with the DMS API Version for all responses.
	w.Header().Set(v1.APIVersionHeader, v1.APIVersion)
	app.router.ServeHTTP(w, r)
}

// dispatchFunc takes a context and request and returns a constructed handler
// for the route. The dispatcher will use this to dynamically create request
// specific handlers for each endpoint without creating a new router for each
// request.
type dispatchFunc func(ctx *Context, r *http.Request) http.Handler

// dispatcher returns a handler that constructs a request specific context and
// handler, using the dispatch factory function.
func (app *App) dispatcher(dispatch dispatchFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := app.context(w, r)

		defer func() {
			// Automated error response handling here. Handlers may return
			// their own errors if they need different behavior (such as
			// range errors for layer upload).
			if ctx.Errors.Len() > 0 {
				_ = errcode.ServeJSON(w, ctx.Errors)
				app.logError(ctx, ctx.Errors)
			}
		}()

		if app.databaseRequired(r) {
			// decorate the namespace with an event bridge so writes below
			// produce notifications for the request.
			ns := notifications.Listen(app.namespace, app.eventBridge(ctx, r))

			database, err := ns.Database(ctx, getDatabaseName(ctx))
			if err != nil {
				dcontext.GetLogger(ctx).Errorf("error resolving database: %v", err)

				switch err := err.(type) {
				case dms.ErrDatabaseNameInvalid:
					ctx.Errors = append(ctx.Errors, v1.ErrorCodeDatabaseUnknown.WithDetail(err.Error()))
				default:
					ctx.Errors = append(ctx.Errors, errcode.ErrorCodeUnknown.WithDetail(err))
				}
				return
			}

			ctx.Database = database
		}

		dispatch(ctx, r).ServeHTTP(w, r)
	})
}

type errCodeKey struct{}

func (errCodeKey) String() string { return "err.code" }

type errMessageKey struct{}

func (errMessageKey) String() string { return "err.message" }

type errDetailKey struct{}

func (errDetailKey) String() string { return "err.detail" }

func (app *App) logError(ctx context.Context, errors errcode.Errors) {
	for _, e1 := range errors {
		var c context.Context

		switch e := e1.(type) {
		case errcode.Error:
			c = context.WithValue(ctx, errCodeKey{}, e.Code)
			c = context.WithValue(c, errMessageKey{}, e.Message)
			c = context.WithValue(c, errDetailKey{}, e.Detail)
		case errcode.ErrorCode:
			c = context.WithValue(ctx, errCodeKey{}, e)
			c = context.WithValue(c, errMessageKey{}, e.Message())
		default:
			// just normal go 'error'
			c = context.WithValue(ctx, errCodeKey{}, errcode.ErrorCodeUnknown)
			c = context.WithValue(c, errMessageKey{}, e.Error())
		}

		c = dcontext.WithLogger(c, dcontext.GetLogger(c,
			errCodeKey{},
			errMessageKey{},
			errDetailKey{}))
		dcontext.GetResponseLogger(c).Errorf("response completed with error")
	}
}

// context constructs the context object for the application. This only be
// called once per request.
func (app *App) context(w http.ResponseWriter, r *http.Request) *Context {
	ctx := r.Context()
	ctx = dcontext.WithVars(ctx, r)
	ctx = dcontext.WithLogger(ctx, dcontext.GetLogger(ctx,
		"vars.database",
		"vars.collection",
		"vars.id"))

	return &Context{
		App:        app,
		Context:    ctx,
		urlBuilder: v1.NewURLBuilderFromRequest(r, app.Config.HTTP.RelativeURLs),
	}
}

// eventBridge returns a bridge for the current request, configured with the
// correct actor and source.
func (app *App) eventBridge(ctx *Context, r *http.Request) notifications.Listener {
	// without an auth layer, the best actor hint available is the basic auth
	// username, which proxies in front of the server tend to set.
	username, _, _ := r.BasicAuth()
	actor := notifications.ActorRecord{
		Name: username,
	}
	request := notifications.NewRequestRecord(dcontext.GetRequestID(ctx), r)

	return notifications.NewBridge(ctx.urlBuilder, app.events.source, actor, request, app.events.sink)
}

// databaseRequired returns true if the route requires a database name.
func (app *App) databaseRequired(r *http.Request) bool {
	route := mux.CurrentRoute(r)
	if route == nil {
		return true
	}
	routeName := route.GetName()
	return routeName != v1.RouteNameBase
}

// apiBase implements a simple yes-man for doing overall checks against the
// api. Clients use it to verify the server speaks this API version.
func apiBase(w http.ResponseWriter, r *http.Request) {
	const emptyJSON = "{}"
	// Provide a simple /v1/ 200 OK response with empty json response.
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Length", fmt.Sprint(len(emptyJSON)))

	fmt.Fprint(w, emptyJSON)
}
