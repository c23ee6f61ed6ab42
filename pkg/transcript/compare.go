package transcript

import (
	"encoding/json"

	"github.com/go-go-golems/marionette/pkg/schema"
)

func jsonSchemaEqual(a, b *schema.Schema) bool {
	if a == nil || b == nil {
		return (a == nil) == (b == nil)
	}
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ab) == string(bb)
}
