package params

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Process-wide schema memo keyed by class identity. Schemas are computed
// outside of any lock and published with LoadOrStore, so concurrent first use
// converges on one value; singleflight keeps the duplicate work away.
var (
	schemas     sync.Map // *Class -> *Schema
	schemaGroup singleflight.Group
)

func schemaOf(c *Class) *Schema {
	if s, ok := schemas.Load(c); ok {
		return s.(*Schema)
	}
	v, _, _ := schemaGroup.Do(classKey(c), func() (any, error) {
		// Double-check after acquiring the singleflight slot.
		if s, ok := schemas.Load(c); ok {
			return s, nil
		}
		actual, _ := schemas.LoadOrStore(c, buildSchema(c))
		return actual, nil
	})
	return v.(*Schema)
}

func classKey(c *Class) string { return fmt.Sprintf("%s@%p", c.name, c) }
