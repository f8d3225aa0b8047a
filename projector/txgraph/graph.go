// Package txgraph maintains the dependency edges among unconfirmed
// transactions: which pending transaction spends an output of which other
// pending transaction. Edges only exist between transactions that are both
// currently in the mempool; confirmed parents are irrelevant to block
// projection and never enter the graph.
package txgraph

import (
	"errors"
	"sort"
)

var (
	// ErrCycleDetected is returned when an ancestor walk re-reaches its
	// starting transaction. The mempool dependency graph is acyclic by
	// construction, but upstream data can be inconsistent during a race
	// between two scrapes, so the walk guards against it.
	ErrCycleDetected = errors.New("cycle detected in ancestry")
)

// Graph holds parent->children and child->parents edges keyed by uid.
// All mutation happens on the single engine goroutine.
type Graph struct {
	parents  map[uint32]map[uint32]struct{}
	children map[uint32]map[uint32]struct{}
}

func New() *Graph {
	return &Graph{
		parents:  make(map[uint32]map[uint32]struct{}),
		children: make(map[uint32]map[uint32]struct{}),
	}
}

// Add inserts a node and its edges to the given in-mempool parents.
// Unknown parents are simply skipped; the caller resolves the reported
// parent ids against the live pending set first.
func (g *Graph) Add(uid uint32, parentUids []uint32) {
	if _, ok := g.parents[uid]; !ok {
		g.parents[uid] = make(map[uint32]struct{})
	}
	if _, ok := g.children[uid]; !ok {
		g.children[uid] = make(map[uint32]struct{})
	}
	for _, p := range parentUids {
		if p == uid {
			continue
		}
		g.parents[uid][p] = struct{}{}
		if _, ok := g.children[p]; !ok {
			g.children[p] = make(map[uint32]struct{})
		}
		g.children[p][uid] = struct{}{}
	}
}

// Remove deletes a node and every edge touching it.
func (g *Graph) Remove(uid uint32) {
	for p := range g.parents[uid] {
		delete(g.children[p], uid)
	}
	for c := range g.children[uid] {
		delete(g.parents[c], uid)
	}
	delete(g.parents, uid)
	delete(g.children, uid)
}

func (g *Graph) Has(uid uint32) bool {
	_, ok := g.parents[uid]
	return ok
}

// ParentsOf returns the direct in-mempool parents of uid, sorted.
func (g *Graph) ParentsOf(uid uint32) []uint32 {
	return sortedKeys(g.parents[uid])
}

// ChildrenOf returns the direct in-mempool children of uid, sorted.
func (g *Graph) ChildrenOf(uid uint32) []uint32 {
	return sortedKeys(g.children[uid])
}

// AncestorsOf returns the full transitive ancestor set of uid (its
// package, excluding uid itself), each ancestor exactly once, sorted.
// A reverse BFS over parent edges; when the walk reaches uid again the
// upstream data is inconsistent and ErrCycleDetected is returned so the
// caller can fall back to the transaction's own fee rate.
func (g *Graph) AncestorsOf(uid uint32) ([]uint32, error) {
	direct, ok := g.parents[uid]
	if !ok || len(direct) == 0 {
		return nil, nil
	}

	visited := make(map[uint32]struct{})
	queue := make([]uint32, 0, len(direct))
	for p := range direct {
		queue = append(queue, p)
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == uid {
			return nil, ErrCycleDetected
		}
		if _, seen := visited[cur]; seen {
			continue
		}
		visited[cur] = struct{}{}
		for p := range g.parents[cur] {
			if _, seen := visited[p]; !seen {
				queue = append(queue, p)
			}
		}
	}

	return sortedKeys(visited), nil
}

func sortedKeys(set map[uint32]struct{}) []uint32 {
	if len(set) == 0 {
		return nil
	}
	out := make([]uint32, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
