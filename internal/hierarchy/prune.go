package hierarchy

// DropSuperseded keeps only the last record emitted for each uid. The
// super-tree lists every book as a leaf and the book file then re-emits the
// same uid as its root; the book file's record is the one that survives.
// It returns the kept records and the number dropped.
func DropSuperseded(records []NodeRecord) ([]NodeRecord, int) {
	last := make(map[string]int, len(records))
	for i := range records {
		last[records[i].UID] = i
	}

	kept := records[:0]
	for i := range records {
		if last[records[i].UID] == i {
			kept = append(kept, records[i])
		}
	}
	return kept, len(records) - len(kept)
}

// FilterValid retains only records whose uid the oracle knows. Tree shape
// plays no part: a branch whose uid is unknown goes even if its children
// stay.
func FilterValid(records []NodeRecord, oracle Oracle) []NodeRecord {
	kept := records[:0]
	for _, r := range records {
		if oracle.Valid(r.UID) {
			kept = append(kept, r)
		}
	}
	return kept
}

// parentSet returns every uid currently referenced as a parent.
func parentSet(records []NodeRecord) map[string]struct{} {
	parents := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r.ParentUID != "" {
			parents[r.ParentUID] = struct{}{}
		}
	}
	return parents
}

// DemoteChildless rewrites every branch that lost all its children into a
// leaf that is its own book root. Filtering can strip a text's sections
// while the text itself is real content that must survive pruning.
// It returns the number of demoted records.
func DemoteChildless(records []NodeRecord) int {
	parents := parentSet(records)
	demoted := 0
	for i := range records {
		r := &records[i]
		if r.Type != TypeBranch {
			continue
		}
		if _, ok := parents[r.UID]; ok {
			continue
		}
		r.Type = TypeLeaf
		r.BookRoot = r.UID
		demoted++
	}
	return demoted
}

// PruneStats describes one run of PruneDeadBranches.
type PruneStats struct {
	Iterations int
	Removed    int
}

// PruneDeadBranches removes branches with no surviving child, repeating
// until a pass removes nothing. Removing a dead branch can leave its own
// parent branch childless, so a single pass is not enough.
func PruneDeadBranches(records []NodeRecord) ([]NodeRecord, PruneStats) {
	var stats PruneStats
	for {
		stats.Iterations++
		parents := parentSet(records)

		kept := records[:0]
		for _, r := range records {
			if r.Type == TypeBranch {
				if _, ok := parents[r.UID]; !ok {
					continue
				}
			}
			kept = append(kept, r)
		}

		removed := len(records) - len(kept)
		records = kept
		stats.Removed += removed
		if removed == 0 {
			return records, stats
		}
	}
}
