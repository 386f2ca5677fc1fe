package corpus

import (
	"versebox/internal/bible"
)

// Entry is one resolved verse: its text and the typed view of its corpus
// metadata.
type Entry struct {
	Text string
	Meta bible.VerseMeta
}

// MetaFromMap converts a raw vector-store payload map into the typed
// metadata struct. Missing and malformed fields default rather than fail:
// the corpus predates its own schema.
func MetaFromMap(m map[string]any) bible.VerseMeta {
	var meta bible.VerseMeta
	if m == nil {
		return meta
	}
	if ref, ok := m["reference"].(string); ok {
		meta.Reference = ref
	}
	if src, ok := m["source"].(string); ok {
		meta.Source = src
	}
	if pop, ok := asInt(m["popularity"]); ok {
		meta.Popularity = pop
		meta.HasPopularity = true
	}
	return meta
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case float32:
		return int(n), true
	}
	return 0, false
}
