package lesson

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/lesson.schema.json
var lessonSchemaJSON []byte

// CheckPayload validates the normalized payload against the lesson wire
// schema. This is a last gate before persistence; a failure here means a bug
// in the normalizer, not bad user input.
func CheckPayload(p Payload) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(lessonSchemaJSON),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("run schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("payload does not match lesson schema: %s", strings.Join(msgs, "; "))
}
