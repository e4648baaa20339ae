package query

import "sync"

// heapNode is one open-set entry of the A* search
type heapNode struct {
	nodeID int32
	fScore float64
	seq    uint64
	index  int
}

// nodeHeap orders entries by f-score, then by insertion order so equal
// scores pop first-in-first-out
type nodeHeap []*heapNode

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].fScore != h[j].fScore {
		return h[i].fScore < h[j].fScore
	}
	return h[i].seq < h[j].seq
}
func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

// Push pushes a new node to the heap
func (h *nodeHeap) Push(x interface{}) {
	n := len(*h)
	item := x.(*heapNode)
	item.index = n
	*h = append(*h, item)
}

// Pop pops a node from the heap
func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[0 : n-1]
	return item
}

// Clear returns every remaining entry to the pool
func (h *nodeHeap) Clear() {
	for _, node := range *h {
		heapNodePool.Put(node)
	}
	*h = (*h)[:0]
}

var heapNodePool = sync.Pool{
	New: func() interface{} {
		return &heapNode{index: -1}
	},
}

func newHeapNode(nodeID int32, fScore float64, seq uint64) *heapNode {
	node := heapNodePool.Get().(*heapNode)
	node.nodeID = nodeID
	node.fScore = fScore
	node.seq = seq
	node.index = -1
	return node
}
