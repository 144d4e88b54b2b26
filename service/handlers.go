// SPDX-License-Identifier: MIT

package service

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/katalvlaran/deprisk/riskgraph"
)

type componentRequest struct {
	ID   string   `json:"id"`
	Risk *float64 `json:"risk"`
}

type gateRequest struct {
	ID string `json:"id"`
}

type riskRequest struct {
	Risk *float64 `json:"risk"`
}

type edgeRequest struct {
	From   string   `json:"from"`
	To     string   `json:"to"`
	Weight *float64 `json:"weight"`
}

// VertexResponse describes one vertex.
type VertexResponse struct {
	ID     string             `json:"id"`
	Kind   riskgraph.NodeKind `json:"kind"`
	Direct float64            `json:"direct"`
	Total  float64            `json:"total"`
	Stale  bool               `json:"stale"`
}

// RisksResponse is the component risk map in slot order plus the components
// above the threshold.
type RisksResponse struct {
	Risks     *orderedmap.OrderedMap[string, float64] `json:"risks"`
	Threshold float64                                  `json:"threshold"`
	Above     []string                                 `json:"above"`
}

// bindOptional decodes a JSON body into req; an empty body leaves req as is.
func bindOptional(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}

	return nil
}

func bindEdge(c *gin.Context, weightRequired bool) (edgeRequest, error) {
	var req edgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if req.From == "" || req.To == "" {
		return req, fmt.Errorf("%w: from and to are required", errBadRequest)
	}
	if weightRequired && req.Weight == nil {
		return req, fmt.Errorf("%w: weight is required", errBadRequest)
	}

	return req, nil
}

func (s *Server) health(c *gin.Context) {
	var n int
	_ = s.locked(func(g *riskgraph.Graph[string]) error {
		n = g.Len()
		return nil
	})
	c.JSON(http.StatusOK, gin.H{"status": "ok", "vertices": n})
}

func (s *Server) addComponent(c *gin.Context) {
	var req componentRequest
	if err := bindOptional(c, &req); err != nil {
		respondError(c, err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	var opts []riskgraph.VertexOption
	if req.Risk != nil {
		opts = append(opts, riskgraph.WithRisk(*req.Risk))
	}
	var resp VertexResponse
	err := s.locked(func(g *riskgraph.Graph[string]) error {
		if err := g.AddComponent(req.ID, opts...); err != nil {
			return err
		}
		resp = describe(g, req.ID)

		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) addGate(c *gin.Context) {
	var req gateRequest
	if err := bindOptional(c, &req); err != nil {
		respondError(c, err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	var resp VertexResponse
	err := s.locked(func(g *riskgraph.Graph[string]) error {
		if err := g.AddAndGate(req.ID); err != nil {
			return err
		}
		resp = describe(g, req.ID)

		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) getVertex(c *gin.Context) {
	id := c.Param("id")
	var resp VertexResponse
	err := s.locked(func(g *riskgraph.Graph[string]) error {
		if !g.Has(id) {
			return fmt.Errorf("vertex %q: %w", id, riskgraph.ErrInvalidHandle)
		}
		resp = describe(g, id)

		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) updateRisk(c *gin.Context) {
	id := c.Param("id")
	var req riskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if req.Risk == nil {
		respondError(c, fmt.Errorf("%w: risk is required", errBadRequest))
		return
	}
	var resp VertexResponse
	err := s.locked(func(g *riskgraph.Graph[string]) error {
		if err := g.UpdateVertexRisk(id, *req.Risk); err != nil {
			return err
		}
		resp = describe(g, id)

		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) deleteVertex(c *gin.Context) {
	id := c.Param("id")
	err := s.locked(func(g *riskgraph.Graph[string]) error {
		return g.DeleteVertex(id)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listEdges(c *gin.Context) {
	var edges []riskgraph.Edge[string]
	_ = s.locked(func(g *riskgraph.Graph[string]) error {
		edges = g.Edges()
		return nil
	})
	if edges == nil {
		edges = []riskgraph.Edge[string]{}
	}
	c.JSON(http.StatusOK, gin.H{"edges": edges})
}

func (s *Server) addEdge(c *gin.Context) {
	req, err := bindEdge(c, false)
	if err != nil {
		respondError(c, err)
		return
	}
	var opts []riskgraph.EdgeOption
	if req.Weight != nil {
		opts = append(opts, riskgraph.WithWeight(*req.Weight))
	}
	s.writeEdge(c, req, func(g *riskgraph.Graph[string]) error {
		return g.AddEdge(req.From, req.To, opts...)
	})
}

func (s *Server) updateEdge(c *gin.Context) {
	req, err := bindEdge(c, true)
	if err != nil {
		respondError(c, err)
		return
	}
	s.writeEdge(c, req, func(g *riskgraph.Graph[string]) error {
		return g.UpdateEdge(req.From, req.To, *req.Weight)
	})
}

// writeEdge runs a mutation and answers with the stored edge.
func (s *Server) writeEdge(c *gin.Context, req edgeRequest, mutate func(g *riskgraph.Graph[string]) error) {
	var e riskgraph.Edge[string]
	err := s.locked(func(g *riskgraph.Graph[string]) error {
		if err := mutate(g); err != nil {
			return err
		}
		w, err := g.EdgeWeight(req.From, req.To)
		e = riskgraph.Edge[string]{From: req.From, To: req.To, Weight: w}

		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) deleteEdge(c *gin.Context) {
	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		respondError(c, fmt.Errorf("%w: from and to are required", errBadRequest))
		return
	}
	err := s.locked(func(g *riskgraph.Graph[string]) error {
		return g.DeleteEdge(from, to)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) risks(c *gin.Context) {
	resp := RisksResponse{Threshold: s.threshold, Above: []string{}}
	err := s.locked(func(g *riskgraph.Graph[string]) error {
		om, err := g.OrderedRisks()
		if err != nil {
			return err
		}
		resp.Risks = om
		for pair := om.Oldest(); pair != nil; pair = pair.Next() {
			if pair.Value > s.threshold {
				resp.Above = append(resp.Above, pair.Key)
			}
		}

		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) risksAbove(c *gin.Context) {
	threshold := s.threshold
	if raw := c.Query("threshold"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(c, fmt.Errorf("%w: threshold: %v", errBadRequest, err))
			return
		}
		threshold = v
	}
	var above []string
	err := s.locked(func(g *riskgraph.Graph[string]) error {
		var err error
		above, err = g.RiskAbove(threshold)

		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if above == nil {
		above = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"threshold": threshold, "above": above})
}

func (s *Server) rebuild(c *gin.Context) {
	err := s.locked(func(g *riskgraph.Graph[string]) error {
		return g.Rebuild()
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// describe reads a live vertex; the caller holds the lock and knows id exists.
func describe(g *riskgraph.Graph[string], id string) VertexResponse {
	kind, _ := g.Kind(id)
	direct, _ := g.GetVertexRisk(id)
	total, _ := g.GetTotalRisk(id)

	return VertexResponse{ID: id, Kind: kind, Direct: direct, Total: total, Stale: g.Stale()}
}
