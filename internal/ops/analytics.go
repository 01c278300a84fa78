package ops

import (
	"context"
	"math"
	"sort"

	"github.com/kodegraph/membank/internal/errors"
	"github.com/kodegraph/membank/internal/gateways"
)

// DependencyEdge is the edge shape every graph algorithm in this file
// operates on, aliased from the gateway so callers never need to import
// both packages to pass a result straight from FindDependencyEdges in.
type DependencyEdge = gateways.DependencyEdge

// adjacencyFromEdges builds a directed adjacency list and the full node
// set from a DependencyEdge-shaped pair list, used by every analytic below
// so they share one graph-loading step.
func adjacencyFromEdges(edges []struct{ From, To string }) (map[string][]string, map[string]bool) {
	adj := map[string][]string{}
	nodes := map[string]bool{}
	for _, e := range edges {
		adj[e.From] = append(adj[e.From], e.To)
		nodes[e.From] = true
		nodes[e.To] = true
	}
	return adj, nodes
}

func nodeList(nodes map[string]bool) []string {
	out := make([]string, 0, len(nodes))
	for n := range nodes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// PageRank runs standard power-iteration PageRank over the Component/
// DEPENDS_ON subgraph, damping 0.85, ε=1e-6, max 100 iterations, checking
// ctx between iterations so a cancelled request aborts cleanly per
// spec.md §5.
func PageRank(ctx context.Context, edges []DependencyEdge) (map[string]float64, int, error) {
	pairs := make([]struct{ From, To string }, len(edges))
	for i, e := range edges {
		pairs[i] = struct{ From, To string }{e.FromGraphID, e.ToGraphID}
	}
	adj, nodeSet := adjacencyFromEdges(pairs)
	nodes := nodeList(nodeSet)
	n := len(nodes)
	if n == 0 {
		return map[string]float64{}, 0, nil
	}

	const damping = 0.85
	const epsilon = 1e-6
	const maxIterations = 100

	outDegree := map[string]int{}
	for _, node := range nodes {
		outDegree[node] = len(adj[node])
	}

	scores := map[string]float64{}
	for _, node := range nodes {
		scores[node] = 1.0 / float64(n)
	}

	iterations := 0
	for iterations = 0; iterations < maxIterations; iterations++ {
		if err := ctx.Err(); err != nil {
			return nil, iterations, errors.Wrap(err, errors.Cancelled, "pagerank cancelled")
		}

		next := map[string]float64{}
		base := (1.0 - damping) / float64(n)
		for _, node := range nodes {
			next[node] = base
		}

		danglingMass := 0.0
		for _, node := range nodes {
			if outDegree[node] == 0 {
				danglingMass += scores[node]
			}
		}
		dangling := damping * danglingMass / float64(n)
		for _, node := range nodes {
			next[node] += dangling
		}

		for _, node := range nodes {
			if outDegree[node] == 0 {
				continue
			}
			share := damping * scores[node] / float64(outDegree[node])
			for _, target := range adj[node] {
				next[target] += share
			}
		}

		delta := 0.0
		for _, node := range nodes {
			delta += math.Abs(next[node] - scores[node])
		}
		scores = next
		if delta < epsilon {
			iterations++
			break
		}
	}

	return scores, iterations, nil
}

// KCoreDecomposition computes each node's coreness via classical peeling:
// repeatedly remove the minimum-degree node, recording as its coreness the
// largest minimum degree seen up to and including its removal.
func KCoreDecomposition(edges []DependencyEdge) map[string]int {
	degree := map[string]int{}
	neighbors := map[string]map[string]bool{}
	addNeighbor := func(a, b string) {
		if neighbors[a] == nil {
			neighbors[a] = map[string]bool{}
		}
		if !neighbors[a][b] {
			neighbors[a][b] = true
			degree[a]++
		}
	}
	for _, e := range edges {
		addNeighbor(e.FromGraphID, e.ToGraphID)
		addNeighbor(e.ToGraphID, e.FromGraphID)
	}

	coreness := map[string]int{}
	removed := map[string]bool{}
	remaining := len(degree)
	k := 0

	for remaining > 0 {
		minNode, minDeg := "", math.MaxInt32
		for node, d := range degree {
			if removed[node] {
				continue
			}
			if d < minDeg || (d == minDeg && node < minNode) {
				minNode, minDeg = node, d
			}
		}
		if minNode == "" {
			break
		}
		if minDeg > k {
			k = minDeg
		}
		coreness[minNode] = k
		removed[minNode] = true
		remaining--
		for neighbor := range neighbors[minNode] {
			if !removed[neighbor] {
				degree[neighbor]--
			}
		}
	}
	return coreness
}

// StronglyConnectedComponents runs Tarjan's algorithm over the directed
// DEPENDS_ON subgraph, reporting components with ≥2 nodes.
func StronglyConnectedComponents(edges []DependencyEdge) [][]string {
	pairs := make([]struct{ From, To string }, len(edges))
	for i, e := range edges {
		pairs[i] = struct{ From, To string }{e.FromGraphID, e.ToGraphID}
	}
	adj, nodeSet := adjacencyFromEdges(pairs)
	nodes := nodeList(nodeSet)

	index := 0
	indices := map[string]int{}
	lowlink := map[string]int{}
	onStack := map[string]bool{}
	var stack []string
	var components [][]string

	var strongconnect func(v string)
	strongconnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		neighbors := append([]string{}, adj[v]...)
		sort.Strings(neighbors)
		for _, w := range neighbors {
			if _, seen := indices[w]; !seen {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if indices[w] < lowlink[v] {
					lowlink[v] = indices[w]
				}
			}
		}

		if lowlink[v] == indices[v] {
			var component []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				component = append(component, w)
				if w == v {
					break
				}
			}
			if len(component) >= 2 {
				sort.Strings(component)
				components = append(components, component)
			}
		}
	}

	for _, v := range nodes {
		if _, seen := indices[v]; !seen {
			strongconnect(v)
		}
	}
	sort.Slice(components, func(i, j int) bool { return components[i][0] < components[j][0] })
	return components
}

// WeaklyConnectedComponents runs union-find over the DEPENDS_ON subgraph
// treated as undirected, reporting components with ≥2 nodes.
func WeaklyConnectedComponents(edges []DependencyEdge) [][]string {
	parent := map[string]string{}
	var find func(x string) string
	find = func(x string) string {
		if parent[x] == "" {
			parent[x] = x
		}
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	union := func(a, b string) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	nodes := map[string]bool{}
	for _, e := range edges {
		nodes[e.FromGraphID] = true
		nodes[e.ToGraphID] = true
		find(e.FromGraphID)
		find(e.ToGraphID)
		union(e.FromGraphID, e.ToGraphID)
	}

	groups := map[string][]string{}
	for node := range nodes {
		root := find(node)
		groups[root] = append(groups[root], node)
	}

	var components [][]string
	for _, group := range groups {
		if len(group) >= 2 {
			sort.Strings(group)
			components = append(components, group)
		}
	}
	sort.Slice(components, func(i, j int) bool { return components[i][0] < components[j][0] })
	return components
}

// LouvainCommunities runs a single-pass greedy modularity optimization
// over the DEPENDS_ON subgraph treated as undirected and unweighted: each
// node starts in its own community and joins the neighboring community
// that most improves modularity, iterating until no move improves it.
// Returns the resulting communities and the final modularity score.
func LouvainCommunities(edges []DependencyEdge) ([][]string, float64) {
	undirected := map[string]map[string]bool{}
	totalDegree := map[string]int{}
	m := 0
	addEdge := func(a, b string) {
		if undirected[a] == nil {
			undirected[a] = map[string]bool{}
		}
		if !undirected[a][b] {
			undirected[a][b] = true
			totalDegree[a]++
			m++
		}
	}
	for _, e := range edges {
		addEdge(e.FromGraphID, e.ToGraphID)
		addEdge(e.ToGraphID, e.FromGraphID)
	}
	if m == 0 {
		return nil, 0
	}

	community := map[string]string{}
	for node := range undirected {
		community[node] = node
	}

	improved := true
	for improved {
		improved = false
		nodes := make([]string, 0, len(undirected))
		for node := range undirected {
			nodes = append(nodes, node)
		}
		sort.Strings(nodes)

		for _, node := range nodes {
			best := community[node]
			bestGain := 0.0
			neighborCommunities := map[string]bool{community[node]: true}
			for neighbor := range undirected[node] {
				neighborCommunities[community[neighbor]] = true
			}

			candidates := make([]string, 0, len(neighborCommunities))
			for c := range neighborCommunities {
				candidates = append(candidates, c)
			}
			sort.Strings(candidates)

			for _, candidate := range candidates {
				edgesToCandidate := 0
				for neighbor := range undirected[node] {
					if community[neighbor] == candidate {
						edgesToCandidate++
					}
				}
				gain := float64(edgesToCandidate) - float64(totalDegree[node])/float64(2*m)
				if gain > bestGain {
					bestGain = gain
					best = candidate
				}
			}

			if best != community[node] {
				community[node] = best
				improved = true
			}
		}
	}

	groups := map[string][]string{}
	for node, c := range community {
		groups[c] = append(groups[c], node)
	}
	var communities [][]string
	for _, group := range groups {
		sort.Strings(group)
		communities = append(communities, group)
	}
	sort.Slice(communities, func(i, j int) bool { return communities[i][0] < communities[j][0] })

	modularity := computeModularity(undirected, totalDegree, m, community)
	return communities, modularity
}

func computeModularity(undirected map[string]map[string]bool, degree map[string]int, m int, community map[string]string) float64 {
	if m == 0 {
		return 0
	}
	q := 0.0
	twoM := float64(2 * m)
	for a, neighbors := range undirected {
		for b := range neighbors {
			if community[a] == community[b] {
				q += 1.0 - (float64(degree[a])*float64(degree[b]))/twoM
			} else {
				q += -(float64(degree[a]) * float64(degree[b])) / twoM
			}
		}
	}
	return q / twoM
}
