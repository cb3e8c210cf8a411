package incremental

// AffectedClosure computes the transitive set of files that may need
// re-analysis after the changed seed set, by BFS over the reverse-dependency
// index. The seed files themselves are always in the closure.
func (s *State) AffectedClosure(changed []string) map[string]bool {
	affected := map[string]bool{}
	queue := append([]string(nil), changed...)

	for len(queue) > 0 {
		file := queue[0]
		queue = queue[1:]
		if affected[file] {
			continue
		}
		affected[file] = true

		for importer := range s.ReverseDeps[file] {
			if !affected[importer] {
				queue = append(queue, importer)
			}
		}
	}

	return affected
}
