package notifications

import (
	"expvar"
	"fmt"
	"net/http"
	"sync"

	events "github.com/docker/go-events"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/heavydata/dms/utils"
)

var (
	// eventsCounter counts total events of incoming, success, failure, and errors
	eventsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: utils.PrometheusNamespace,
		Subsystem: "notifications",
		Name:      "events_total",
		Help:      "The number of total events",
	}, []string{"type", "endpoint"})

	// pendingGauge measures the pending queue size per endpoint
	pendingGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: utils.PrometheusNamespace,
		Subsystem: "notifications",
		Name:      "pending",
		Help:      "The gauge of pending events in queue",
	}, []string{"endpoint"})

	// statusCounter counts the total notification calls per status code
	statusCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: utils.PrometheusNamespace,
		Subsystem: "notifications",
		Name:      "status_total",
		Help:      "The number of status codes",
	}, []string{"code", "endpoint"})
)

// EndpointMetrics track various actions taken by the endpoint, typically by
// number of events. The goal of this to export it via expvar but we may find
// some other future solution to be better.
type EndpointMetrics struct {
	Pending   int            // events pending in queue
	Events    int            // total events incoming
	Successes int            // total events written successfully
	Failures  int            // total events failed
	Errors    int            // total events errored
	Statuses  map[string]int // status code histogram, per call event
}

// safeMetrics guards the metrics implementation with a lock and provides a
// safe update function.
type safeMetrics struct {
	EndpointName string
	EndpointMetrics
	sync.Mutex // protects statuses map
}

// newSafeMetrics returns safeMetrics with map allocated.
func newSafeMetrics(name string) *safeMetrics {
	var sm safeMetrics
	sm.Statuses = make(map[string]int)
	sm.EndpointName = name
	return &sm
}

// httpStatusListener returns the listener for the http sink that updates the
// relevant counters.
func (sm *safeMetrics) httpStatusListener() httpStatusListener {
	return &endpointMetricsHTTPStatusListener{
		safeMetrics: sm,
	}
}

// eventQueueListener returns a listener that maintains queue related counters.
func (sm *safeMetrics) eventQueueListener() eventQueueListener {
	return &endpointMetricsEventQueueListener{
		safeMetrics: sm,
	}
}

// endpointMetricsHTTPStatusListener increments counters related to http sinks
// for the relevant events.
type endpointMetricsHTTPStatusListener struct {
	*safeMetrics
}

var _ httpStatusListener = &endpointMetricsHTTPStatusListener{}

func (emsl *endpointMetricsHTTPStatusListener) success(status int, event events.Event) {
	emsl.safeMetrics.Lock()
	defer emsl.safeMetrics.Unlock()
	emsl.Statuses[fmt.Sprintf("%d %s", status, http.StatusText(status))]++
	emsl.Successes++

	statusCounter.WithLabelValues(fmt.Sprintf("%d %s", status, http.StatusText(status)), emsl.EndpointName).Inc()
	eventsCounter.WithLabelValues("Successes", emsl.EndpointName).Inc()
}

func (emsl *endpointMetricsHTTPStatusListener) failure(status int, event events.Event) {
	emsl.safeMetrics.Lock()
	defer emsl.safeMetrics.Unlock()
	emsl.Statuses[fmt.Sprintf("%d %s", status, http.StatusText(status))]++
	emsl.Failures++

	statusCounter.WithLabelValues(fmt.Sprintf("%d %s", status, http.StatusText(status)), emsl.EndpointName).Inc()
	eventsCounter.WithLabelValues("Failures", emsl.EndpointName).Inc()
}

func (emsl *endpointMetricsHTTPStatusListener) err(err error, event events.Event) {
	emsl.safeMetrics.Lock()
	defer emsl.safeMetrics.Unlock()
	emsl.Errors++

	eventsCounter.WithLabelValues("Errors", emsl.EndpointName).Inc()
}

// endpointMetricsEventQueueListener maintains the incoming events counter and
// the queues pending count.
type endpointMetricsEventQueueListener struct {
	*safeMetrics
}

func (eqc *endpointMetricsEventQueueListener) ingress(event events.Event) {
	eqc.Lock()
	defer eqc.Unlock()
	eqc.Events++
	eqc.Pending++

	eventsCounter.WithLabelValues("Events", eqc.EndpointName).Inc()
	pendingGauge.WithLabelValues(eqc.EndpointName).Inc()
}

func (eqc *endpointMetricsEventQueueListener) egress(event events.Event) {
	eqc.Lock()
	defer eqc.Unlock()
	eqc.Pending--

	pendingGauge.WithLabelValues(eqc.EndpointName).Dec()
}

// endpoints is global registry of endpoints used to report metrics to expvar
var endpoints struct {
	registered []*Endpoint
	mu         sync.Mutex
}

// register places the endpoint into expvar so that stats are tracked.
func register(e *Endpoint) {
	endpoints.mu.Lock()
	defer endpoints.mu.Unlock()

	endpoints.registered = append(endpoints.registered, e)
}

func init() {
	// Setup the expvar structure so queue state can be inspected in
	// realtime under /debug/vars.
	dmsexp := expvar.Get("dms")

	if dmsexp == nil {
		dmsexp = expvar.NewMap("dms")
	}

	var notifications expvar.Map
	notifications.Init()
	notifications.Set("endpoints", expvar.Func(func() interface{} {
		endpoints.mu.Lock()
		defer endpoints.mu.Unlock()

		var names []interface{}
		for _, v := range endpoints.registered {
			var epjson struct {
				Name string `json:"name"`
				URL  string `json:"url"`
				EndpointConfig

				Metrics EndpointMetrics
			}

			epjson.Name = v.Name()
			epjson.URL = v.URL()
			epjson.EndpointConfig = v.EndpointConfig

			v.ReadMetrics(&epjson.Metrics)

			names = append(names, epjson)
		}

		return names
	}))

	dmsexp.(*expvar.Map).Set("notifications", &notifications)

	prometheus.MustRegister(eventsCounter, pendingGauge, statusCounter)
}
