package ember

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Fuzzy file navigation: a bounded recursive scan of the working tree plus
// a subsequence scorer. The picker dialog on top of this lives outside the
// core; it consumes ScanFiles and RankFiles.

// ScanOptions bounds a file scan.
type ScanOptions struct {
	MaxDepth      int
	MaxFiles      int
	ShowHidden    bool
	CaseSensitive bool
}

// ScanFiles walks root collecting regular files up to the configured depth
// and count. Hidden files and directories are skipped unless ShowHidden is
// set.
func ScanFiles(root string, opts ScanOptions) []string {
	var files []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil || rel == "." {
			return nil
		}
		name := d.Name()
		hidden := strings.HasPrefix(name, ".")
		depth := strings.Count(rel, string(filepath.Separator))
		if d.IsDir() {
			if hidden && !opts.ShowHidden {
				return fs.SkipDir
			}
			if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
				return fs.SkipDir
			}
			return nil
		}
		if hidden && !opts.ShowHidden {
			return nil
		}
		files = append(files, rel)
		if opts.MaxFiles > 0 && len(files) >= opts.MaxFiles {
			return fs.SkipAll
		}
		return nil
	})
	return files
}

// FuzzyScore matches pattern as a subsequence of candidate and scores the
// match; higher is better, and ok is false when the pattern is not a
// subsequence. Adjacent matched characters, matches at the start, and
// matches directly after a separator score extra; gaps cost.
func FuzzyScore(pattern, candidate string, caseSensitive bool) (score int, ok bool) {
	if pattern == "" {
		return 0, true
	}
	p := pattern
	c := candidate
	if !caseSensitive {
		p = strings.ToLower(p)
		c = strings.ToLower(c)
	}
	pi := 0
	prevMatch := -2
	pr := []rune(p)
	for ci, r := range c {
		if pi >= len(pr) {
			break
		}
		if r != pr[pi] {
			continue
		}
		switch {
		case ci == 0:
			score += 8
		case prevMatch == ci-1:
			score += 5
		case isSeparatorByte(c, ci):
			score += 6
		default:
			score += 1
		}
		prevMatch = ci
		pi++
	}
	if pi < len(pr) {
		return 0, false
	}
	// Shorter candidates rank higher for the same matched set.
	score -= len(c) / 8
	return score, true
}

// isSeparatorByte reports whether the byte before index i is a path or word
// separator.
func isSeparatorByte(s string, i int) bool {
	if i == 0 {
		return true
	}
	switch s[i-1] {
	case '/', '\\', '-', '_', '.', ' ':
		return true
	}
	return false
}

// RankFiles filters and orders candidates by fuzzy score, best first. Ties
// break lexicographically for stable display.
func RankFiles(pattern string, candidates []string, caseSensitive bool) []string {
	type ranked struct {
		path  string
		score int
	}
	var out []ranked
	for _, c := range candidates {
		if s, ok := FuzzyScore(pattern, c, caseSensitive); ok {
			out = append(out, ranked{path: c, score: s})
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].score != out[b].score {
			return out[a].score > out[b].score
		}
		return out[a].path < out[b].path
	})
	paths := make([]string, len(out))
	for i, r := range out {
		paths[i] = r.path
	}
	return paths
}
