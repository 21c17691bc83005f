package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// 编辑会话指标
	SessionOnlineUsers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "session_online_users",
			Help: "Current websocket participants in editing sessions",
		},
	)

	SessionMessageCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_messages_total",
			Help: "Session envelopes relayed, by kind and direction",
		},
		[]string{"kind", "direction"},
	)

	// 发布指标
	PublishCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_publish_total",
			Help: "Publish attempts, by result",
		},
		[]string{"result"},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(SessionOnlineUsers)
	prometheus.MustRegister(SessionMessageCounter)
	prometheus.MustRegister(PublishCounter)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
