package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

// Stats holds the mesh counts found in one --write_info file.
type Stats struct {
	Triangles    int64
	Vertices     int64
	HasTriangles bool
	HasVertices  bool
}

// ReadInfo reads and parses a --write_info JSON file.
func ReadInfo(path string) (*Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := ParseJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseJSON extracts mesh counts from raw stats JSON.
// Exported for testing without a real tool run.
func ParseJSON(data []byte) (*Stats, error) {
	var root interface{}
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse stats JSON: %w", err)
	}
	s := &Stats{}
	walk([]interface{}{root}, s)
	return s, nil
}

// walk visits one depth level at a time so the shallowest match wins.
// Keys are visited in sorted order for a stable result.
func walk(level []interface{}, s *Stats) {
	for len(level) > 0 && !(s.HasTriangles && s.HasVertices) {
		var next []interface{}
		for _, node := range level {
			switch v := node.(type) {
			case map[string]interface{}:
				keys := make([]string, 0, len(v))
				for k := range v {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					if n, ok := v[k].(float64); ok {
						s.take(k, int64(n))
						continue
					}
					next = append(next, v[k])
				}
			case []interface{}:
				next = append(next, v...)
			}
		}
		level = next
	}
}

func (s *Stats) take(key string, n int64) {
	k := strings.ToLower(key)
	switch {
	case !s.HasTriangles && (strings.Contains(k, "triangle") || (strings.Contains(k, "face") && !strings.Contains(k, "surface"))):
		s.Triangles, s.HasTriangles = n, true
	case !s.HasVertices && strings.Contains(k, "vert"):
		s.Vertices, s.HasVertices = n, true
	}
}

// Compare renders "triangles 12,000 -> 1,200 (10.0%), vertices ..." for the
// counts present in both stats. It returns "" when nothing is comparable.
func Compare(before, after *Stats) string {
	if before == nil || after == nil {
		return ""
	}
	var parts []string
	if before.HasTriangles && after.HasTriangles {
		parts = append(parts, change("triangles", before.Triangles, after.Triangles))
	}
	if before.HasVertices && after.HasVertices {
		parts = append(parts, change("vertices", before.Vertices, after.Vertices))
	}
	return strings.Join(parts, ", ")
}

func change(label string, from, to int64) string {
	s := fmt.Sprintf("%s %s -> %s", label, humanize.Comma(from), humanize.Comma(to))
	if from > 0 {
		s += fmt.Sprintf(" (%.1f%%)", float64(to)*100/float64(from))
	}
	return s
}
