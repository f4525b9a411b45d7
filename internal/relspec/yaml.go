package relspec

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roach88/relmap/internal/schema"
)

// ParseYAML parses the relations list of one YAML document.
// Returns the valid relations with their source lines, and an error per
// invalid relation.
func ParseYAML(file string, data []byte) ([]*schema.Relation, []int, []error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: err.Error(), File: file}}
	}
	if len(root.Content) == 0 {
		return nil, nil, nil
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "top level must be a mapping", File: file, Line: doc.Line}}
	}

	var list *yaml.Node
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value == "relations" {
			list = doc.Content[i+1]
			break
		}
	}
	if list == nil {
		return nil, nil, nil
	}
	if list.Kind != yaml.SequenceNode {
		return nil, nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "relations must be a list", File: file, Line: list.Line}}
	}

	var (
		rels  []*schema.Relation
		lines []int
		errs  []error
	)
	for _, item := range list.Content {
		rel := &schema.Relation{}
		if err := item.Decode(rel); err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error(), File: file, Line: item.Line})
			continue
		}
		if err := normalize(rel); err != nil {
			errs = append(errs, &LoadError{Code: classify(err), Message: err.Error(), File: file, Line: item.Line})
			continue
		}
		rels = append(rels, rel)
		lines = append(lines, item.Line)
	}
	return rels, lines, errs
}

// normalize canonicalizes field types and validates rel.
func normalize(rel *schema.Relation) error {
	for i, f := range rel.Fields {
		t, err := schema.ParseType(string(f.Type))
		if err != nil {
			return fmt.Errorf("relation %s: field %s: %w", rel.Name, f.Name, err)
		}
		rel.Fields[i].Type = t
	}
	return rel.Validate()
}
