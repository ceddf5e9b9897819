// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordRegistration()
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordTicketCreated()
	RecordTicketUpdated()
	RecordPurchase(amount float64, quantity int)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	registrations  prometheus.Counter
	loginSuccess   prometheus.Counter
	loginFail      prometheus.Counter
	ticketsCreated prometheus.Counter
	ticketsUpdated prometheus.Counter
	purchases      prometheus.Counter
	soldQuantity   prometheus.Counter
	purchaseAmount prometheus.Histogram
	httpStatus     *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticketman_registrations_total",
			Help: "ユーザー登録成功の合計数",
		}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticketman_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		loginFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticketman_login_fail_total",
			Help: "ログイン失敗の合計数",
		}),
		ticketsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticketman_tickets_created_total",
			Help: "出品されたチケットの合計数",
		}),
		ticketsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticketman_tickets_updated_total",
			Help: "更新されたチケットの合計数",
		}),
		purchases: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticketman_purchases_total",
			Help: "購入取引の合計数",
		}),
		soldQuantity: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticketman_sold_quantity_total",
			Help: "販売されたチケット枚数の合計",
		}),
		purchaseAmount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ticketman_purchase_amount",
			Help:    "手数料・税込みの購入金額の分布",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10),
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ticketman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.registrations,
		c.loginSuccess,
		c.loginFail,
		c.ticketsCreated,
		c.ticketsUpdated,
		c.purchases,
		c.soldQuantity,
		c.purchaseAmount,
		c.httpStatus,
	)

	return c
}

// RecordRegistration はユーザー登録成功を記録する。
func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure はログイン失敗を記録する。
func (c *Collector) RecordLoginFailure() {
	c.loginFail.Inc()
}

// RecordTicketCreated はチケット出品を記録する。
func (c *Collector) RecordTicketCreated() {
	c.ticketsCreated.Inc()
}

// RecordTicketUpdated はチケット更新を記録する。
func (c *Collector) RecordTicketUpdated() {
	c.ticketsUpdated.Inc()
}

// RecordPurchase は購入取引を記録する。
func (c *Collector) RecordPurchase(amount float64, quantity int) {
	c.purchases.Inc()
	c.soldQuantity.Add(float64(quantity))
	c.purchaseAmount.Observe(amount)
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
