package inspector

import "sort"

// Duplicates groups records by exact statement text and returns the
// groups executed more than once, least duplicated first, together with
// the total excess count: a statement executed N times contributes N-1.
//
// Statement text is compared byte for byte. No normalization is done,
// so two queries differing only in a literal are distinct.
func Duplicates(records []QueryRecord) ([]DuplicateGroup, int) {
	if len(records) == 0 {
		return nil, 0
	}

	counts := make(map[string]int, len(records))
	for _, r := range records {
		counts[r.SQL]++
	}

	var groups []DuplicateGroup
	excess := 0
	for sql, count := range counts {
		if count > 1 {
			groups = append(groups, DuplicateGroup{SQL: sql, Count: count})
			excess += count - 1
		}
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count < groups[j].Count
		}
		return groups[i].SQL < groups[j].SQL
	})
	return groups, excess
}

// GroupBySQL indexes records by statement text so a representative
// traceback can be recovered for each duplicated statement.
func GroupBySQL(records []QueryRecord) map[string][]QueryRecord {
	groups := make(map[string][]QueryRecord, len(records))
	for _, r := range records {
		groups[r.SQL] = append(groups[r.SQL], r)
	}
	return groups
}
