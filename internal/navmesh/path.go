package navmesh

import (
	"container/heap"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// FindPath finds a walkable path from one point to another using A* over
// polygon adjacency. Waypoints are the start, the midpoints of crossed edges
// and the end, with unnecessary intermediate points removed.
// Returns false if either point is off mesh or no path exists.
func (n *NavMesh) FindPath(from, to mgl64.Vec3) ([]mgl64.Vec3, bool) {
	start, ok := n.Project(from)
	if !ok {
		return nil, false
	}
	end, ok := n.Project(to)
	if !ok {
		return nil, false
	}
	startPoly, _ := n.FindPolygon(xz(start))
	endPoly, _ := n.FindPolygon(xz(end))

	// Same polygon: triangles are convex, walk straight.
	if startPoly == endPoly {
		return []mgl64.Vec3{start, end}, true
	}

	result := n.astar(startPoly, endPoly, end)
	if result == nil {
		return nil, false
	}

	polys := make([]int, 0, 16)
	for p := result; p != nil; p = p.parent {
		polys = append(polys, p.poly)
	}
	for i, j := 0, len(polys)-1; i < j; i, j = i+1, j-1 {
		polys[i], polys[j] = polys[j], polys[i]
	}

	path := make([]mgl64.Vec3, 0, len(polys)+1)
	path = append(path, start)
	for i := 0; i+1 < len(polys); i++ {
		path = append(path, n.portalMidpoint(polys[i], polys[i+1]))
	}
	path = append(path, end)

	return n.smoothPath(path), true
}

// portalMidpoint returns the midpoint of the edge shared by polygons a and b.
func (n *NavMesh) portalMidpoint(a, b int) mgl64.Vec3 {
	poly := n.Polygons[a]
	for e, nb := range poly.Neighbors {
		if int(nb) == b {
			v0 := n.Vertices[poly.Vertices[e]]
			v1 := n.Vertices[poly.Vertices[(e+1)%3]]
			return v0.Add(v1).Mul(0.5)
		}
	}
	return n.Centroid(b)
}

// smoothPath drops waypoint i when the straight segment between its
// neighbors stays on the mesh. Up to 3 passes.
func (n *NavMesh) smoothPath(path []mgl64.Vec3) []mgl64.Vec3 {
	for range 3 {
		if len(path) <= 2 {
			return path
		}

		changed := false
		smoothed := make([]mgl64.Vec3, 0, len(path))
		smoothed = append(smoothed, path[0])
		for i := 1; i < len(path)-1; i++ {
			if n.canWalk(smoothed[len(smoothed)-1], path[i+1]) {
				changed = true
				continue
			}
			smoothed = append(smoothed, path[i])
		}
		smoothed = append(smoothed, path[len(path)-1])
		path = smoothed

		if !changed {
			break
		}
	}
	return path
}

// canWalk samples the segment a-b on the XZ plane.
func (n *NavMesh) canWalk(a, b mgl64.Vec3) bool {
	pa, pb := xz(a), xz(b)
	length := pb.Sub(pa).Len()
	steps := int(math.Ceil(length / PathSampleStep))
	if steps > MaxPathSamples {
		steps = MaxPathSamples
	}
	for s := 1; s < steps; s++ {
		t := float64(s) / float64(steps)
		p := pa.Add(pb.Sub(pa).Mul(t))
		if _, ok := n.FindPolygon(p); !ok {
			return false
		}
	}
	return true
}

// polyNode is a node in the A* search over polygons.
type polyNode struct {
	poly   int
	pos    mgl64.Vec3
	parent *polyNode
	gCost  float64
	fCost  float64
	index  int
}

func (n *NavMesh) astar(startPoly, endPoly int, target mgl64.Vec3) *polyNode {
	startPos := n.Centroid(startPoly)
	start := &polyNode{poly: startPoly, pos: startPos}
	start.fCost = startPos.Sub(target).Len()

	openList := &polyHeap{}
	heap.Init(openList)
	heap.Push(openList, start)

	closed := make(map[int]struct{}, 64)

	for range MaxPathIterations {
		if openList.Len() == 0 {
			return nil
		}

		current := heap.Pop(openList).(*polyNode)
		if current.poly == endPoly {
			return current
		}
		if _, done := closed[current.poly]; done {
			continue
		}
		closed[current.poly] = struct{}{}

		for _, nb := range n.Polygons[current.poly].Neighbors {
			if nb == NoNeighbor {
				continue
			}
			if _, done := closed[int(nb)]; done {
				continue
			}
			pos := n.Centroid(int(nb))
			node := &polyNode{
				poly:   int(nb),
				pos:    pos,
				parent: current,
				gCost:  current.gCost + pos.Sub(current.pos).Len(),
			}
			node.fCost = node.gCost + pos.Sub(target).Len()
			heap.Push(openList, node)
		}
	}

	return nil // Max iterations exceeded
}

// polyHeap implements container/heap for the A* open list (min-heap by fCost).
type polyHeap []*polyNode

func (h polyHeap) Len() int           { return len(h) }
func (h polyHeap) Less(i, j int) bool { return h[i].fCost < h[j].fCost }
func (h polyHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *polyHeap) Push(x any)        { n := x.(*polyNode); n.index = len(*h); *h = append(*h, n) }
func (h *polyHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*h = old[:n-1]
	return node
}
