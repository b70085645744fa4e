package pipeline

import "github.com/LJTian/NewsHub/internal/news"

// Dedupe 按 URL 去重，保留首次出现的位置，后出现的同 URL 覆盖先前的值。
// 去重后截断到 max 条，约束富化阶段的扇出（max <= 0 不截断）。
func Dedupe(cands []news.Candidate, max int) []news.Candidate {
	idx := make(map[string]int, len(cands))
	out := make([]news.Candidate, 0, len(cands))
	for _, c := range cands {
		if i, ok := idx[c.URL]; ok {
			out[i] = c
			continue
		}
		idx[c.URL] = len(out)
		out = append(out, c)
	}
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}
