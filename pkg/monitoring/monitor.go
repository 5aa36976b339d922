package monitoring

import (
	"strconv"
	"sync"
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

	// AuthAttempts 登录/注册结果，outcome 为 success 或错误分类
	AuthAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hiring_tool_auth_attempts_total",
			Help: "Login and signup attempts by outcome",
		},
		[]string{"action", "outcome"},
	)

	AssessmentsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hiring_tool_assessments_started_total",
			Help: "Assessment sessions started, including retakes",
		},
		[]string{"topic"},
	)

	AssessmentsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hiring_tool_assessments_submitted_total",
			Help: "Assessment submissions by result",
		},
		[]string{"topic", "passed", "timed_out"},
	)

	AssessmentScore = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hiring_tool_assessment_score",
			Help:    "Distribution of submitted assessment scores",
			Buckets: []float64{20, 40, 60, 70, 80, 90, 100},
		},
		[]string{"topic"},
	)

	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hiring_tool_live_session_clients",
		Help: "Websocket clients following the active assessment",
	})

	registerOnce sync.Once
)

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(AuthAttempts)
		prometheus.MustRegister(AssessmentsStarted)
		prometheus.MustRegister(AssessmentsSubmitted)
		prometheus.MustRegister(AssessmentScore)
		prometheus.MustRegister(ActiveSessions)
	})
}

// RecordSubmission 记录一次提交
func RecordSubmission(topic string, score float64, passed, timedOut bool) {
	AssessmentsSubmitted.WithLabelValues(topic, strconv.FormatBool(passed), strconv.FormatBool(timedOut)).Inc()
	AssessmentScore.WithLabelValues(topic).Observe(score)
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
