package lookup

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Field는 요약 표의 한 줄이다. Key는 점으로 이어진 경로다 (예: "risk.score").
type Field struct {
	Key   string
	Value string
}

// Flatten은 중첩된 응답을 정렬된 key/value 목록으로 펼친다.
func Flatten(r Result) []Field {
	var out []Field
	flatten("", map[string]any(r), &out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func flatten(prefix string, v any, out *[]Field) {
	switch t := v.(type) {
	case map[string]any:
		if len(t) == 0 && prefix != "" {
			*out = append(*out, Field{Key: prefix, Value: "{}"})
		}
		for k, child := range t {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flatten(key, child, out)
		}
	case []any:
		if allScalars(t) {
			parts := make([]string, len(t))
			for i, e := range t {
				parts[i] = scalar(e)
			}
			*out = append(*out, Field{Key: prefix, Value: strings.Join(parts, ", ")})
			return
		}
		for i, e := range t {
			flatten(fmt.Sprintf("%s[%d]", prefix, i), e, out)
		}
	default:
		*out = append(*out, Field{Key: prefix, Value: scalar(t)})
	}
}

func allScalars(items []any) bool {
	for _, e := range items {
		switch e.(type) {
		case map[string]any, []any:
			return false
		}
	}
	return true
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return "-"
	case string:
		return t
	case float64, bool:
		b, _ := json.Marshal(t)
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

func sortedCopy(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}
