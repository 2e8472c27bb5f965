package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/huangsam/pokestats/schema"
)

// maxSuggestions caps the near matches listed for an unknown name.
const maxSuggestions = 5

// Compare puts two entities side by side. labeled says whether cluster and
// profile come from a persisted bundle.
func Compare(rows []schema.LabeledRow, left, right string, labeled bool) (*schema.ComparisonResult, error) {
	l, err := findByName(rows, left)
	if err != nil {
		return nil, err
	}
	r, err := findByName(rows, right)
	if err != nil {
		return nil, err
	}

	result := &schema.ComparisonResult{Left: l, Right: r, Labeled: labeled}
	for i, col := range schema.StatColumns {
		sc := schema.StatComparison{
			Stat:  col,
			Left:  l.Stats[i],
			Right: r.Stats[i],
			Delta: l.Stats[i] - r.Stats[i],
		}
		switch {
		case sc.Delta > 0:
			sc.Winner = l.Name
			result.Summary.LeftWins++
		case sc.Delta < 0:
			sc.Winner = r.Name
			result.Summary.RightWins++
		default:
			result.Summary.Ties++
		}
		result.Stats = append(result.Stats, sc)
	}

	result.Summary.LeftTotal = l.Stats.Total()
	result.Summary.RightTotal = r.Stats.Total()
	switch {
	case result.Summary.LeftTotal > result.Summary.RightTotal:
		result.Summary.Overall = l.Name
	case result.Summary.LeftTotal < result.Summary.RightTotal:
		result.Summary.Overall = r.Name
	}
	return result, nil
}

// findByName looks an entity up case-insensitively. Unknown names fail with
// the closest names in the table.
func findByName(rows []schema.LabeledRow, name string) (schema.LabeledRow, error) {
	want := strings.TrimSpace(name)
	for _, r := range rows {
		if strings.EqualFold(r.Name, want) {
			return r, nil
		}
	}
	suggestions := nearMatches(rows, want)
	if len(suggestions) == 0 {
		return schema.LabeledRow{}, fmt.Errorf("no entity named %q", name)
	}
	return schema.LabeledRow{}, fmt.Errorf("no entity named %q (did you mean %s?)", name, strings.Join(suggestions, ", "))
}

// nearMatches ranks names by substring match first, then edit distance.
func nearMatches(rows []schema.LabeledRow, query string) []string {
	type candidate struct {
		name  string
		score int
	}
	q := strings.ToLower(query)
	if q == "" {
		return nil
	}
	limit := max(2, len(q)/3)

	var cands []candidate
	for _, r := range rows {
		n := strings.ToLower(r.Name)
		switch {
		case strings.Contains(n, q) || strings.Contains(q, n):
			cands = append(cands, candidate{r.Name, 0})
		default:
			if d := levenshtein(n, q); d <= limit {
				cands = append(cands, candidate{r.Name, d})
			}
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score < cands[j].score
		}
		return cands[i].name < cands[j].name
	})

	out := make([]string, 0, maxSuggestions)
	for _, c := range cands {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, c.name)
	}
	return out
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
