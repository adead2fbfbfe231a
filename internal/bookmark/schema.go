package bookmark

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// documentSchema는 북마크 파일 형식이다: 문자열 값만 가지는 평평한 객체.
const documentSchema = `{
  "type": "object",
  "additionalProperties": {"type": "string", "minLength": 1}
}`

var schemaLoader = gojsonschema.NewStringLoader(documentSchema)

func validateDocument(data []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%v: %w", err, ErrCorrupt)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%s: %w", strings.Join(msgs, "; "), ErrCorrupt)
	}
	return nil
}
