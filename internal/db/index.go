package db

import "errors"

// IndexFieldType is the engine-level field type.
type IndexFieldType string

// Index field types.
const (
	IndexFieldTag     IndexFieldType = "TAG"
	IndexFieldText    IndexFieldType = "TEXT"
	IndexFieldNumeric IndexFieldType = "NUMERIC"
	IndexFieldVector  IndexFieldType = "VECTOR"
)

// IndexDefinition describes an FT index over JSON documents.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// IndexField is one schema entry.
type IndexField struct {
	// Path is the JSON path into the document, e.g. "$.colors[*]".
	Path string
	// Alias is the queryable field name.
	Alias string
	Type  IndexFieldType

	TagSeparator string
	Sortable     bool

	VectorDim      int
	VectorDistance string
}

// Validate checks the definition for structural errors.
func (d *IndexDefinition) Validate() error {
	if d.Name == "" {
		return errors.New("index name is required")
	}
	if len(d.Fields) == 0 {
		return errors.New("at least one field is required")
	}
	for i := range d.Fields {
		f := &d.Fields[i]
		if f.Path == "" || f.Alias == "" {
			return errors.New("index fields need both path and alias")
		}
		if f.Type == IndexFieldVector && f.VectorDim <= 0 {
			return errors.New("vector fields need a positive dimension")
		}
	}
	return nil
}

// IndexBuilder is a fluent builder for FT index definitions.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts building an FT index definition over JSON documents.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name}}
}

// Prefix adds key prefixes to the index.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// Tag adds a TAG field.
func (b *IndexBuilder) Tag(path, alias string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{Path: path, Alias: alias, Type: IndexFieldTag})
	return b
}

// Text adds a TEXT field.
func (b *IndexBuilder) Text(path, alias string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{Path: path, Alias: alias, Type: IndexFieldText})
	return b
}

// Numeric adds a NUMERIC field.
func (b *IndexBuilder) Numeric(path, alias string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{Path: path, Alias: alias, Type: IndexFieldNumeric})
	return b
}

// SortableNumeric adds a NUMERIC field usable in SORTBY.
func (b *IndexBuilder) SortableNumeric(path, alias string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Path: path, Alias: alias, Type: IndexFieldNumeric, Sortable: true,
	})
	return b
}

// SortableText adds a TEXT field usable in SORTBY.
func (b *IndexBuilder) SortableText(path, alias string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Path: path, Alias: alias, Type: IndexFieldText, Sortable: true,
	})
	return b
}

// VectorFlat adds a FLAT vector field.
func (b *IndexBuilder) VectorFlat(path, alias string, dim int, distance string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Path: path, Alias: alias, Type: IndexFieldVector,
		VectorDim: dim, VectorDistance: distance,
	})
	return b
}

// Build validates and returns the index definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	return &b.def, nil
}

// MustBuild calls Build and panics on error.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}
