package pipeline

// deepMerge merges src into dst and returns dst. Nested objects merge,
// arrays concatenate and any other src value replaces the dst value.
// src is copied, never aliased.
func deepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for key, sv := range src {
		switch s := sv.(type) {
		case map[string]any:
			if d, ok := dst[key].(map[string]any); ok {
				dst[key] = deepMerge(d, s)
				continue
			}
		case []any:
			if d, ok := dst[key].([]any); ok {
				dst[key] = append(d, cloneValue(s).([]any)...)
				continue
			}
		}
		dst[key] = cloneValue(sv)
	}
	return dst
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = e
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out
	default:
		return v
	}
}
