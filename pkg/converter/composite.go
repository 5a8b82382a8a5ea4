// pkg/converter/composite.go
package converter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"
)

// compositeText renders decoded Snowflake ARRAY, OBJECT and VARIANT values
// as single-line JSON text. Values that arrive as JSON strings go through
// compactJSON instead.
func (c *TypeConverter) compositeText(value interface{}) (string, bool) {
	switch reflect.ValueOf(value).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct:
		return c.marshalComposite(value)
	}
	return "", false
}

func (c *TypeConverter) marshalComposite(value interface{}) (string, bool) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Debug("Composite value not representable as JSON",
			zap.String("type", fmt.Sprintf("%T", value)),
			zap.Error(err))
		return "", false
	}
	return string(data), true
}

// compactJSON only touches text that is a JSON array or object
func compactJSON(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) < 2 {
		return "", false
	}
	first, last := trimmed[0], trimmed[len(trimmed)-1]
	if !(first == '[' && last == ']') && !(first == '{' && last == '}') {
		return "", false
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(trimmed)); err != nil {
		return "", false
	}
	return buf.String(), true
}
