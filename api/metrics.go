package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// RouteMetrics aggregates metrics for a specific route
type RouteMetrics struct {
	Method      string        `json:"method"`
	Path        string        `json:"path"`
	Count       int64         `json:"count"`
	ErrorCount  int64         `json:"errorCount"`
	TotalTime   time.Duration `json:"totalTime"`
	AvgTime     time.Duration `json:"avgTime"`
	MinTime     time.Duration `json:"minTime"`
	MaxTime     time.Duration `json:"maxTime"`
	LastRequest time.Time     `json:"lastRequest"`
}

// Summary is the response of the metrics endpoint
type Summary struct {
	Since         time.Time       `json:"since"`
	TotalRequests int64           `json:"totalRequests"`
	TotalErrors   int64           `json:"totalErrors"`
	ErrorRate     float64         `json:"errorRate"`
	Routes        []*RouteMetrics `json:"routes"`
}

// MetricsCollector aggregates request timings per route template
type MetricsCollector struct {
	mu            sync.RWMutex
	routes        map[string]*RouteMetrics
	since         time.Time
	totalRequests int64
	totalErrors   int64
}

// NewMetrics returns an empty collector
func NewMetrics() *MetricsCollector {
	return &MetricsCollector{routes: make(map[string]*RouteMetrics), since: time.Now()}
}

// Record adds one finished request
func (mc *MetricsCollector) Record(method, path string, status int, d time.Duration, at time.Time) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := method + " " + path
	m, ok := mc.routes[key]
	if !ok {
		m = &RouteMetrics{Method: method, Path: path, MinTime: d}
		mc.routes[key] = m
	}
	m.Count++
	m.TotalTime += d
	m.AvgTime = m.TotalTime / time.Duration(m.Count)
	m.LastRequest = at
	if d < m.MinTime {
		m.MinTime = d
	}
	if d > m.MaxTime {
		m.MaxTime = d
	}

	mc.totalRequests++
	if status >= 400 {
		m.ErrorCount++
		mc.totalErrors++
	}
}

// Summary returns a copy of the collected metrics, slowest average first
func (mc *MetricsCollector) Summary() Summary {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	s := Summary{Since: mc.since, TotalRequests: mc.totalRequests, TotalErrors: mc.totalErrors}
	if mc.totalRequests > 0 {
		s.ErrorRate = float64(mc.totalErrors) / float64(mc.totalRequests)
	}
	for _, m := range mc.routes {
		c := *m
		s.Routes = append(s.Routes, &c)
	}
	sort.Slice(s.Routes, func(i, j int) bool {
		if s.Routes[i].AvgTime != s.Routes[j].AvgTime {
			return s.Routes[i].AvgTime > s.Routes[j].AvgTime
		}
		return s.Routes[i].Path < s.Routes[j].Path
	})
	return s
}

// MetricsHandler serves the summary as JSON
func (mc *MetricsCollector) MetricsHandler(w http.ResponseWriter, r *http.Request) {
	b, err := json.Marshal(mc.Summary())
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
