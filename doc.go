// Package deprisk is an incremental probabilistic dependency-risk engine.
//
// Components carry a direct failure probability; a weighted edge u→v is the
// probability that a failure of u propagates to v. AND-gates model
// redundancy: a gate fails only when all of its inputs fail. The engine keeps
// the transitive propagation closure up to date on every edit, so risk
// queries never re-traverse the graph.
//
// What is inside?
//
//	matrix/       dense pre-allocated square storage (float64 and uint64 cells)
//	dfs/          deterministic topological ordering with cycle reporting
//	riskgraph/    the engine: handles, closure maintenance, noisy-OR evaluation
//	scenario/     YAML scenario documents replayed onto an engine
//	service/      HTTP surface for one engine (gin, Prometheus metrics)
//	cmd/deprisk   CLI: eval a scenario, or serve the HTTP surface
//
// Quick example:
//
//	supplier ─┐
//	          ├─► vendor ──► product
//	carrier  ─┘
//
//	g := riskgraph.New[string]()
//	_ = g.AddComponents([]string{"supplier", "carrier", "vendor", "product"}, nil)
//	_ = g.AddEdge("supplier", "vendor", riskgraph.WithWeight(1.0/3))
//	_ = g.AddEdge("carrier", "vendor", riskgraph.WithWeight(1.0/3))
//	_ = g.AddEdge("vendor", "product", riskgraph.WithWeight(1.0/3))
//	risks, _ := g.ComputeRisks() // product ≈ 0.3502
//
//	go install github.com/katalvlaran/deprisk/cmd/deprisk@latest
package deprisk
