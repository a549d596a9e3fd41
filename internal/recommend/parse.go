package recommend

import (
	"sort"
	"strings"

	"schemefinder/internal/llmtool"
	"schemefinder/internal/scheme"
)

// parseNames decodes a name discovery answer. Names are trimmed, blanks dropped and the list
// capped at maxNames; duplicates are kept. generalAdvice is passed through as the model wrote it.
func parseNames(raw string) (scheme.NameList, error) {
	var out scheme.NameList
	if err := llmtool.DecodeObject(raw, "schemeNames", &out); err != nil {
		return scheme.NameList{}, err
	}
	names := make([]string, 0, len(out.SchemeNames))
	for _, n := range out.SchemeNames {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
		if len(names) == maxNames {
			break
		}
	}
	out.SchemeNames = names
	return out, nil
}

type recordsEnvelope struct {
	Schemes []scheme.Record `json:"schemes"`
}

// parseRecords decodes a details or search answer and repairs every record.
// Records without a name are dropped.
func parseRecords(raw string) ([]scheme.Record, error) {
	var env recordsEnvelope
	if err := llmtool.DecodeObject(raw, "schemes", &env); err != nil {
		return nil, err
	}
	out := make([]scheme.Record, 0, len(env.Schemes))
	for _, r := range env.Schemes {
		r = r.Normalize()
		if r.Name == "" {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// orderByNames stably sorts records into the order of names. Records whose name is not in
// names keep their relative order after the matched ones.
func orderByNames(recs []scheme.Record, names []string) []scheme.Record {
	pos := make(map[string]int, len(names))
	for i, n := range names {
		key := strings.ToLower(strings.TrimSpace(n))
		if _, ok := pos[key]; !ok {
			pos[key] = i
		}
	}
	index := func(r scheme.Record) int {
		if i, ok := pos[strings.ToLower(r.Name)]; ok {
			return i
		}
		return len(names)
	}
	sort.SliceStable(recs, func(a, b int) bool { return index(recs[a]) < index(recs[b]) })
	return recs
}

// Batches partitions names into consecutive groups of at most size.
func Batches(names []string, size int) [][]string {
	if size <= 0 {
		size = DefaultBatchSize
	}
	out := make([][]string, 0, (len(names)+size-1)/size)
	for start := 0; start < len(names); start += size {
		end := start + size
		if end > len(names) {
			end = len(names)
		}
		out = append(out, names[start:end:end])
	}
	return out
}
