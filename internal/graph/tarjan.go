package graph

// StronglyConnectedComponents runs Tarjan's algorithm iteratively and returns
// the components in reverse topological order. Components are reported for
// every node, including singletons; callers filter for size or self-loops.
func (g *DependencyGraph) StronglyConnectedComponents() [][]NodeID {
	n := len(g.paths)
	index := make([]int, n)
	lowlink := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}

	var stack []NodeID
	var components [][]NodeID
	counter := 0

	type frame struct {
		node    NodeID
		succs   []NodeID
		nextIdx int
	}

	for start := 0; start < n; start++ {
		if index[start] != -1 {
			continue
		}

		callStack := []frame{{node: NodeID(start), succs: g.Dependencies(NodeID(start))}}
		index[start] = counter
		lowlink[start] = counter
		counter++
		stack = append(stack, NodeID(start))
		onStack[start] = true

		for len(callStack) > 0 {
			top := &callStack[len(callStack)-1]
			v := top.node

			if top.nextIdx < len(top.succs) {
				w := top.succs[top.nextIdx]
				top.nextIdx++
				if index[w] == -1 {
					index[w] = counter
					lowlink[w] = counter
					counter++
					stack = append(stack, w)
					onStack[w] = true
					callStack = append(callStack, frame{node: w, succs: g.Dependencies(w)})
				} else if onStack[w] {
					if index[w] < lowlink[v] {
						lowlink[v] = index[w]
					}
				}
				continue
			}

			// Done with v's successors: pop the frame.
			callStack = callStack[:len(callStack)-1]
			if len(callStack) > 0 {
				parent := callStack[len(callStack)-1].node
				if lowlink[v] < lowlink[parent] {
					lowlink[parent] = lowlink[v]
				}
			}

			if lowlink[v] == index[v] {
				var component []NodeID
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					component = append(component, w)
					if w == v {
						break
					}
				}
				components = append(components, component)
			}
		}
	}

	return components
}

// CycleComponents returns the SCCs that form cycles: components larger than
// one node, plus singletons with a self-loop.
func (g *DependencyGraph) CycleComponents() [][]NodeID {
	var cycles [][]NodeID
	for _, c := range g.StronglyConnectedComponents() {
		if len(c) > 1 || (len(c) == 1 && g.HasEdge(c[0], c[0])) {
			cycles = append(cycles, c)
		}
	}
	return cycles
}
