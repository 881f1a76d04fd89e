package recommendations

import (
	"sort"
)

// merge combines database and AI items. Database items keep their position,
// an AI duplicate only raises the score, and AI-only items follow. The merged
// list is ordered by score, ties keeping merge order.
func merge(db, ai []Item, limit int) []Item {
	out := make([]Item, 0, len(db)+len(ai))
	index := make(map[string]int, len(db)+len(ai))
	add := func(it Item) {
		if i, ok := index[it.FragranceID]; ok {
			if it.Score > out[i].Score {
				out[i].Score = it.Score
			}
			if out[i].Explanation == "" {
				out[i].Explanation = it.Explanation
			}
			if len(out[i].accords) == 0 {
				out[i].accords = it.accords
			}
			out[i].Source = string(StrategyHybrid)
			return
		}
		index[it.FragranceID] = len(out)
		out = append(out, it)
	}
	for _, it := range db {
		add(it)
	}
	for _, it := range ai {
		add(it)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func hybridConfidence(db, ai *outcome) float64 {
	switch {
	case db != nil && ai != nil:
		return round((db.confidence+ai.confidence)/2, 2)
	case ai != nil:
		return ai.confidence
	case db != nil:
		return db.confidence
	default:
		return 0
	}
}
