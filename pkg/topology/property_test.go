package topology

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/taraforge/attacktree/pkg/graph"
)

// buildRandomDAG creates n gate nodes with random forward edges (i -> j only
// for i < j), which is acyclic by construction. Returns the graph and the
// adjacency list.
func buildRandomDAG(n int, seed int64) (*graph.Graph, [][]int) {
	rng := rand.New(rand.NewSource(seed))
	adj := make([][]int, n)
	nodes := make([]*graph.Node, n)
	for i := 0; i < n; i++ {
		var children []string
		for j := i + 1; j < n; j++ {
			if rng.Intn(3) == 0 {
				adj[i] = append(adj[i], j)
				children = append(children, nodeID(j))
			}
		}
		nodes[i] = graph.NewGate(nodeID(i), graph.GateAnd, children...)
	}
	g, err := graph.NewGraph(nodes)
	if err != nil {
		panic(err)
	}
	return g, adj
}

func nodeID(i int) string {
	return fmt.Sprintf("n%d", i)
}

// reaches is the ground-truth reachability over the adjacency list,
// inclusive of from itself.
func reaches(adj [][]int, from, to int) bool {
	if from == to {
		return true
	}
	visited := make([]bool, len(adj))
	stack := []int{from}
	visited[from] = true
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range adj[cur] {
			if next == to {
				return true
			}
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

// TestWouldCreateCycle_Properties verifies the cycle check against ground
// truth over randomly generated DAGs: every cycle-forming pair must be
// rejected and every safe pair accepted.
func TestWouldCreateCycle_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("cycle check matches reachability ground truth", prop.ForAll(
		func(n int, seed int64) bool {
			g, adj := buildRandomDAG(n, seed)
			for source := 0; source < n; source++ {
				for target := 0; target < n; target++ {
					want := source == target || reaches(adj, target, source)
					got := WouldCreateCycle(g, nodeID(source), nodeID(target))
					if got != want {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(2, 12),
		gen.Int64(),
	))

	properties.Property("accepted edges keep the graph acyclic", prop.ForAll(
		func(n int, seed int64, sourceIdx, targetIdx int) bool {
			g, adj := buildRandomDAG(n, seed)
			source := sourceIdx % n
			target := targetIdx % n
			if WouldCreateCycle(g, nodeID(source), nodeID(target)) {
				return true // rejected edges are out of scope here
			}
			// Apply the edge and confirm no node reaches itself.
			adj[source] = append(adj[source], target)
			for i := 0; i < n; i++ {
				for _, next := range adj[i] {
					if reaches(adj, next, i) {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(2, 10),
		gen.Int64(),
		gen.IntRange(0, 1<<20),
		gen.IntRange(0, 1<<20),
	))

	properties.TestingRun(t)
}
