// SPDX-License-Identifier: MIT

// Package service exposes one riskgraph engine over HTTP for a presentation
// layer. Every engine call runs under a single mutex: the engine itself is
// not safe for concurrent use.
package service

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/katalvlaran/deprisk/riskgraph"
	"github.com/katalvlaran/deprisk/scenario"
)

// Config configures New. Zero values select the defaults noted per field.
type Config struct {
	// Capacity is the engine's vertex capacity (riskgraph.DefaultCapacity).
	Capacity int
	// Threshold is the default for GET /v1/risks/above. When nil, the
	// scenario's threshold is used, then scenario.DefaultThreshold.
	Threshold *float64
	// Logger receives request and engine logs (no-op).
	Logger *zap.Logger
	// Registry receives the engine metrics and backs GET /metrics
	// (a fresh prometheus.Registry).
	Registry *prometheus.Registry
	// Scenario, when set, is applied to the engine before serving.
	Scenario *scenario.Document
}

// Server owns the engine and its HTTP routes.
type Server struct {
	mu        sync.Mutex
	graph     *riskgraph.Graph[string]
	threshold float64

	log      *zap.Logger
	registry *prometheus.Registry
	router   *gin.Engine
}

// New builds the engine, applies cfg.Scenario if any, and wires the routes.
func New(cfg Config) (*Server, error) {
	if cfg.Capacity <= 0 {
		cfg.Capacity = riskgraph.DefaultCapacity
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	metrics, err := riskgraph.NewMetrics(cfg.Registry)
	if err != nil {
		return nil, err
	}
	s := &Server{
		graph: riskgraph.New[string](
			riskgraph.WithCapacity(cfg.Capacity),
			riskgraph.WithLogger(cfg.Logger.Named("engine")),
			riskgraph.WithMetrics(metrics),
		),
		threshold: scenario.DefaultThreshold,
		log:       cfg.Logger,
		registry:  cfg.Registry,
	}
	if cfg.Scenario != nil {
		if err := cfg.Scenario.Apply(s.graph); err != nil {
			return nil, err
		}
		s.threshold = cfg.Scenario.ThresholdOr(s.threshold)
	}
	if cfg.Threshold != nil {
		s.threshold = *cfg.Threshold
	}
	s.router = s.routes()

	return s, nil
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(s.log))

	router.GET("/healthz", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	v1 := router.Group("/v1")
	{
		v1.POST("/components", s.addComponent)
		v1.POST("/gates", s.addGate)

		v1.GET("/vertices/:id", s.getVertex)
		v1.PUT("/vertices/:id/risk", s.updateRisk)
		v1.DELETE("/vertices/:id", s.deleteVertex)

		v1.GET("/edges", s.listEdges)
		v1.PUT("/edges", s.addEdge)
		v1.PATCH("/edges", s.updateEdge)
		v1.DELETE("/edges", s.deleteEdge)

		v1.GET("/risks", s.risks)
		v1.GET("/risks/above", s.risksAbove)
		v1.POST("/rebuild", s.rebuild)
	}

	return router
}

// locked runs fn with the engine lock held.
func (s *Server) locked(fn func(g *riskgraph.Graph[string]) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(s.graph)
}
