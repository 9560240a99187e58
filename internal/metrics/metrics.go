// Package metrics declares the prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CacheLookups counts page cache lookups by result ("hit", "miss", "error").
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogfeed_page_cache_lookups_total",
		Help: "Page cache lookups by result.",
	}, []string{"result"})

	FollowOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogfeed_follow_operations_total",
		Help: "Follow graph mutations by operation.",
	}, []string{"op"})

	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blogfeed_posts_created_total",
		Help: "Posts created.",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
