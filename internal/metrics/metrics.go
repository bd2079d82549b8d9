// Package metrics はアプリケーションの Prometheus メトリクスを定義します。
// *Metrics が nil の場合、すべての記録メソッドは何もしない。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ゲートの結果
const (
	GateBound            = "bound"
	GateMissing          = "missing"
	GateInvalid          = "invalid"
	GateResolutionFailed = "resolution_failed"
	GateSkipped          = "skipped"
)

type Metrics struct {
	requests          *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	gateOutcomes      *prometheus.CounterVec
	memoOperations    *prometheus.CounterVec
	providerExchanges *prometheus.CounterVec
}

// New はメトリクスを生成し reg に登録します。テストでは prometheus.NewRegistry() を渡す。
func New(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		gateOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identity_gate_total",
			Help:      "Identity gate decisions by mode and outcome",
		}, []string{"mode", "outcome"}),
		memoOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memo_operations_total",
			Help:      "Memo store operations by kind and result",
		}, []string{"operation", "result"}),
		providerExchanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identity_provider_exchanges_total",
			Help:      "Identity provider code exchanges by outcome",
		}, []string{"outcome"}),
	}
}

// Handler は /metrics 用のハンドラを返します。
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Middleware はリクエスト数とレイテンシを chi のルートパターン単位で記録します。
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		// ルートパターンはルーティング後にしか確定しない
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) ObserveGate(mode, outcome string) {
	if m == nil {
		return
	}
	m.gateOutcomes.WithLabelValues(mode, outcome).Inc()
}

func (m *Metrics) ObserveMemoOperation(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.memoOperations.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) ObserveProviderExchange(outcome string) {
	if m == nil {
		return
	}
	m.providerExchanges.WithLabelValues(outcome).Inc()
}
