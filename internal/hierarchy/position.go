package hierarchy

// groupKey identifies the records that share a level within a book.
// Records above book granularity have no book root and fall into the
// unbooked group of their depth.
type groupKey struct {
	book     string
	unbooked bool
	depth    int
}

func groupOf(r *NodeRecord) groupKey {
	if r.BookRoot == "" {
		return groupKey{unbooked: true, depth: r.PitakaDepth}
	}
	return groupKey{book: r.BookRoot, depth: r.PitakaDepth}
}

// AssignPositions sets GlobalPosition to each record's index and, within
// each (book_root, pitaka_depth) group, assigns DepthPosition and links
// PrevUID/NextUID to the group neighbours in list order. It returns the
// number of groups.
func AssignPositions(records []NodeRecord) int {
	last := make(map[groupKey]int)
	count := make(map[groupKey]int)

	for i := range records {
		r := &records[i]
		r.GlobalPosition = i
		r.PrevUID = ""
		r.NextUID = ""

		key := groupOf(r)
		r.DepthPosition = count[key]
		count[key]++

		if prev, ok := last[key]; ok {
			records[prev].NextUID = r.UID
			r.PrevUID = records[prev].UID
		}
		last[key] = i
	}
	return len(count)
}
