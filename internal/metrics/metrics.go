package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"duedate/internal/logging"
	"duedate/internal/schedule"
)

var (
	Calculations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "duedate_calculations_total",
		Help: "Total successful due date calculations",
	})
	ValidationErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "duedate_validation_errors_total",
		Help: "Rejected calculations by parameter",
	}, []string{"param"})
	TurnaroundHours = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "duedate_turnaround_hours",
		Help:    "Requested turnaround in working hours",
		Buckets: []float64{1, 2, 4, 8, 16, 40, 80, 160},
	})
	CalculationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "duedate_calculation_duration_seconds",
		Help:    "Time spent computing a due date",
		Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
	})
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "duedate_command_runs_total",
		Help: "CLI command invocations",
	}, []string{"command"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "duedate_command_errors_total",
		Help: "CLI command failures",
	}, []string{"command"})
)

func init() {
	prometheus.MustRegister(Calculations, ValidationErrors, TurnaroundHours, CalculationDuration, CommandRuns, CommandErrors)
}

// Observer counts successful calculations and their turnaround.
func Observer() schedule.Observer {
	return func(c schedule.Calculation) {
		Calculations.Inc()
		TurnaroundHours.Observe(float64(c.Turnaround))
	}
}

// ObserveError records a rejected calculation; other errors are ignored.
func ObserveError(err error) {
	if p := schedule.InvalidParam(err); p != "" {
		ValidationErrors.WithLabelValues(p).Inc()
	}
}

// ObserveDuration records the time since start.
func ObserveDuration(start time.Time) {
	CalculationDuration.Observe(time.Since(start).Seconds())
}

func IncCommandRun(cmd string)   { CommandRuns.WithLabelValues(cmd).Inc() }
func IncCommandError(cmd string) { CommandErrors.WithLabelValues(cmd).Inc() }

// Handler serves /metrics and /health.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return mux
}

// StartServer serves Handler on addr (e.g. ":9090") in the background. An empty
// addr falls back to METRICS_ADDR; if that is empty too, or the address cannot be
// bound, nothing is started and nil is returned. Stop it with Shutdown.
func StartServer(addr string) *http.Server {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return nil
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		logging.Error("metrics_server_error", map[string]any{"addr": addr, "error": err.Error()})
		return nil
	}
	srv := &http.Server{Addr: ln.Addr().String(), Handler: Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("metrics_server_error", map[string]any{"addr": srv.Addr, "error": err.Error()})
		}
	}()
	logging.Info("metrics_server_started", map[string]any{"addr": srv.Addr})
	return srv
}

// Shutdown gracefully stops a server returned by StartServer; nil is a no-op.
func Shutdown(ctx context.Context, srv *http.Server) error {
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
