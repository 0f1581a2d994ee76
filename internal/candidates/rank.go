package candidates

import "slices"

// Rank deduplicates records by name keeping the highest score, orders them
// by score descending with first-seen order breaking ties, and truncates to
// n entries. n <= 0 disables truncation. When the set reports no subject,
// the result carries no candidates.
func Rank(set Set, n int) RankedResult {
	if !set.ContainsSubject {
		return RankedResult{
			Candidates:      []Record{},
			ContainsSubject: false,
			RejectionReason: set.RejectionReason,
		}
	}

	ranked := dedupe(set.Records)

	slices.SortStableFunc(ranked, func(a, b Record) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		}
		return 0
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}

	return RankedResult{
		Candidates:      ranked,
		ContainsSubject: true,
	}
}

// dedupe keeps one record per name, at the position of its first
// occurrence, holding the highest score seen. Equal scores keep the
// first-seen record.
func dedupe(records []Record) []Record {
	out := make([]Record, 0, len(records))
	seen := make(map[string]int, len(records))

	for _, r := range records {
		if i, ok := seen[r.name]; ok {
			if r.score > out[i].score {
				out[i] = r
			}
			continue
		}
		seen[r.name] = len(out)
		out = append(out, r)
	}
	return out
}
