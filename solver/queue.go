package solver

// varHeap is a binary heap over variables, ordered by decreasing activity.
// A positional index allows fixing a variable's rank in place when its
// activity is bumped, and O(1) membership tests.
type varHeap struct {
	activity []float64 // the solver's activity slice, shared, never copied
	vars     []Var     // heap content
	pos      []int32   // position of each var in vars; -1 when absent
}

func newVarHeap(activity []float64) varHeap {
	h := varHeap{
		activity: activity,
		vars:     make([]Var, 0, len(activity)),
		pos:      make([]int32, len(activity)),
	}
	for i := range h.pos {
		h.pos[i] = -1
	}
	for v := 0; v < len(activity); v++ {
		h.add(Var(v))
	}
	return h
}

// before is the heap order: higher activity comes first, the lowest
// variable winning ties. The order is total, so the decision sequence
// never depends on how the heap was built.
func (h *varHeap) before(u, v Var) bool {
	if h.activity[u] == h.activity[v] {
		return u < v
	}
	return h.activity[u] > h.activity[v]
}

func (h *varHeap) up(i int) {
	v := h.vars[i]
	for i > 0 {
		p := (i - 1) / 2
		if !h.before(v, h.vars[p]) {
			break
		}
		h.vars[i] = h.vars[p]
		h.pos[h.vars[i]] = int32(i)
		i = p
	}
	h.vars[i] = v
	h.pos[v] = int32(i)
}

func (h *varHeap) down(i int) {
	v := h.vars[i]
	for {
		child := 2*i + 1
		if child >= len(h.vars) {
			break
		}
		if r := child + 1; r < len(h.vars) && h.before(h.vars[r], h.vars[child]) {
			child = r
		}
		if !h.before(h.vars[child], v) {
			break
		}
		h.vars[i] = h.vars[child]
		h.pos[h.vars[i]] = int32(i)
		i = child
	}
	h.vars[i] = v
	h.pos[v] = int32(i)
}

func (h *varHeap) empty() bool {
	return len(h.vars) == 0
}

func (h *varHeap) has(v Var) bool {
	return h.pos[v] >= 0
}

// add puts v in the heap. v must not already be present.
func (h *varHeap) add(v Var) {
	h.pos[v] = int32(len(h.vars))
	h.vars = append(h.vars, v)
	h.up(len(h.vars) - 1)
}

// raise restores the heap order after v's activity increased.
func (h *varHeap) raise(v Var) {
	h.up(int(h.pos[v]))
}

// popMax removes and returns the variable with the highest activity.
// The heap must not be empty.
func (h *varHeap) popMax() Var {
	v := h.vars[0]
	last := len(h.vars) - 1
	h.vars[0] = h.vars[last]
	h.pos[h.vars[0]] = 0
	h.pos[v] = -1
	h.vars = h.vars[:last]
	if len(h.vars) > 1 {
		h.down(0)
	}
	return v
}

// rebuild resets the heap to contain exactly the given variables.
func (h *varHeap) rebuild(vs []Var) {
	for _, v := range h.vars {
		h.pos[v] = -1
	}
	h.vars = h.vars[:0]
	for _, v := range vs {
		h.pos[v] = int32(len(h.vars))
		h.vars = append(h.vars, v)
	}
	for i := len(h.vars)/2 - 1; i >= 0; i-- {
		h.down(i)
	}
}
