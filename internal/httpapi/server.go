// Package httpapi serves read-only queries over a loaded graph.
//
// Vertex ids in request paths are validated here; the graph types themselves
// do not check them.
package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/csrgo/algo"
	"github.com/hupe1980/csrgo/codec"
	"github.com/hupe1980/csrgo/core"
	"github.com/hupe1980/csrgo/internal/pool"
)

// Graph is the read surface the server needs. Both *csr.CSR and
// *fastcsr.FastCSR satisfy it.
type Graph interface {
	algo.Adjacency
	NumEdges() int
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCodec sets the response encoder.
func WithCodec(c codec.Codec) Option {
	return func(s *Server) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithGatherer exposes g on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithPool sets the pool used by BFS requests.
func WithPool(p *pool.Pool) Option {
	return func(s *Server) {
		if p != nil {
			s.pool = p
		}
	}
}

// Server answers graph queries over HTTP.
type Server struct {
	graph    Graph
	name     string
	logger   *slog.Logger
	codec    codec.Codec
	gatherer prometheus.Gatherer
	pool     *pool.Pool
}

// New returns a Server for g. name is reported by /v1/stats.
func New(g Graph, name string, opts ...Option) *Server {
	s := &Server{
		graph:  g,
		name:   name,
		logger: slog.New(slog.DiscardHandler),
		codec:  codec.Default,
		pool:   pool.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Route("/v1", func(r chi.Router) {
		r.Get("/stats", s.handleStats)
		r.Get("/vertices/{id}/neighbors", s.handleNeighbors)
		r.Get("/bfs/{id}", s.handleBFS)
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// StatsResponse is returned by GET /v1/stats.
type StatsResponse struct {
	Name     string `json:"name,omitempty"`
	Vertices int    `json:"vertices"`
	Edges    int    `json:"edges"`
}

// NeighborsResponse is returned by GET /v1/vertices/{id}/neighbors.
type NeighborsResponse struct {
	ID        core.VertexID   `json:"id"`
	Degree    int             `json:"degree"`
	Neighbors []core.VertexID `json:"neighbors"`
}

// BFSResponse is returned by GET /v1/bfs/{id}.
type BFSResponse struct {
	Start   core.VertexID     `json:"start"`
	Reached int               `json:"reached"`
	Levels  [][]core.VertexID `json:"levels"`
}

// ErrorResponse carries a failure message.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.write(w, http.StatusOK, StatsResponse{
		Name:     s.name,
		Vertices: s.graph.NumVertices(),
		Edges:    s.graph.NumEdges(),
	})
}

func (s *Server) handleNeighbors(w http.ResponseWriter, r *http.Request) {
	v, ok := s.vertex(w, r)
	if !ok {
		return
	}
	nbrs := s.graph.Neighbors(v)
	if nbrs == nil {
		nbrs = []core.VertexID{}
	}
	s.write(w, http.StatusOK, NeighborsResponse{ID: v, Degree: len(nbrs), Neighbors: nbrs})
}

func (s *Server) handleBFS(w http.ResponseWriter, r *http.Request) {
	v, ok := s.vertex(w, r)
	if !ok {
		return
	}
	levels := algo.LevelBFS(s.graph, v, s.pool)
	reached := 0
	for _, l := range levels {
		reached += len(l)
	}
	s.write(w, http.StatusOK, BFSResponse{Start: v, Reached: reached, Levels: levels})
}

// vertex parses {id} and writes the error response when it is not a vertex.
func (s *Server) vertex(w http.ResponseWriter, r *http.Request) (core.VertexID, bool) {
	raw := chi.URLParam(r, "id")
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		s.write(w, http.StatusBadRequest, ErrorResponse{Error: "invalid vertex id " + strconv.Quote(raw)})
		return 0, false
	}
	if v >= uint64(s.graph.NumVertices()) {
		s.write(w, http.StatusNotFound, ErrorResponse{Error: "vertex " + raw + " not found"})
		return 0, false
	}
	return v, true
}

func (s *Server) write(w http.ResponseWriter, status int, v any) {
	body, err := s.codec.Marshal(v)
	if err != nil {
		s.logger.Error("encode response", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
