package types

import (
	"fmt"

	"tracelens/internal/schema"
)

// ArtifactName labels schema errors raised while decoding the type catalog.
const ArtifactName = "types"

// Catalog is the validated, immutable type table of one analysis run.
type Catalog struct {
	types []ResolvedType
	index map[TypeID]int
}

// NewCatalog indexes types by identifier. Identifiers must be unique.
func NewCatalog(types []ResolvedType) (*Catalog, error) {
	c := &Catalog{
		types: types,
		index: make(map[TypeID]int, len(types)),
	}
	for i := range types {
		id := types[i].ID
		if prev, dup := c.index[id]; dup {
			return nil, &schema.Error{
				Artifact: ArtifactName,
				Index:    i,
				Field:    "id",
				Reason:   schema.ReasonDuplicateID,
				Detail:   fmt.Sprintf("id %d already defined by record %d", id, prev),
			}
		}
		c.index[id] = i
	}
	return c, nil
}

// Decode validates a types.json document. Validation is all-or-nothing:
// the first bad record fails the whole load and no catalog is returned.
func Decode(data []byte) (*Catalog, error) {
	items, err := schema.ReadArray(data)
	if err != nil {
		return nil, schema.At(err, ArtifactName, -1, "")
	}
	out := make([]ResolvedType, len(items))
	for i, raw := range items {
		if err := schema.DecodeStrict(raw, &out[i], ""); err != nil {
			return nil, schema.At(err, ArtifactName, i, "")
		}
	}
	return NewCatalog(out)
}

// Len returns the number of types.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.types)
}

// Types returns the records in catalog order.
// The slice is shared; callers must not modify it.
func (c *Catalog) Types() []ResolvedType {
	if c == nil {
		return nil
	}
	return c.types
}

// Lookup returns the type with the given identifier.
func (c *Catalog) Lookup(id TypeID) (*ResolvedType, bool) {
	if c == nil {
		return nil, false
	}
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return &c.types[i], true
}

// Position returns the catalog index of id.
func (c *Catalog) Position(id TypeID) (int, bool) {
	if c == nil {
		return 0, false
	}
	i, ok := c.index[id]
	return i, ok
}
