package relspec

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/relmap/internal/schema"
)

// LoadMode controls how errors are handled during spec loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// Result contains the relations loaded from a directory.
type Result struct {
	Relations []*schema.Relation
	FileCount int
}

// Relation returns the relation with the given name, ignoring case.
func (r *Result) Relation(name string) (*schema.Relation, bool) {
	for _, rel := range r.Relations {
		if strings.EqualFold(rel.Name, name) {
			return rel, true
		}
	}
	return nil, false
}

// Load reads every .cue, .yaml and .yml file under dir.
// CUE relations come first, in declaration order, then YAML relations by
// file path. If mode is LoadModeFailFast, returns on the first error.
func Load(dir string, mode LoadMode) (*Result, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("specs directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing specs directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, yamlFiles, err := FindSpecFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 && len(yamlFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no spec files found in %s", dir)}}
	}

	result := &Result{FileCount: len(cueFiles) + len(yamlFiles)}
	l := &loader{mode: mode, result: result, names: map[string]bool{}, tables: map[string]bool{}}

	if len(cueFiles) > 0 {
		if stop := l.loadCUE(dir); stop {
			return result, l.errs
		}
	}
	for _, path := range yamlFiles {
		if stop := l.loadYAML(path); stop {
			return result, l.errs
		}
	}

	if len(result.Relations) == 0 && len(l.errs) == 0 {
		l.errs = append(l.errs, &LoadError{Code: ErrCodeGeneric, Message: "no relations found in specs"})
	}
	return result, l.errs
}

// loader accumulates relations and errors across files.
type loader struct {
	mode   LoadMode
	result *Result
	errs   []error
	names  map[string]bool
	tables map[string]bool
}

// fail records err and reports whether loading should stop.
func (l *loader) fail(err error) bool {
	l.errs = append(l.errs, err)
	return l.mode == LoadModeFailFast
}

// add records rel unless its name or table was already seen.
func (l *loader) add(rel *schema.Relation, where *LoadError) bool {
	name := strings.ToLower(rel.Name)
	table := schema.Key(schema.NewTable(rel))
	switch {
	case l.names[name]:
		where.Code, where.Message = ErrCodeDuplicate, fmt.Sprintf("duplicate relation %q", rel.Name)
		return l.fail(where)
	case l.tables[table]:
		where.Code, where.Message = ErrCodeDuplicate, fmt.Sprintf("relation %s: duplicate table %q", rel.Name, rel.TableName())
		return l.fail(where)
	}
	l.names[name] = true
	l.tables[table] = true
	l.result.Relations = append(l.result.Relations, rel)
	return false
}

func (l *loader) loadCUE(dir string) bool {
	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return l.fail(&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"})
	}
	inst := instances[0]
	if inst.Err != nil {
		return l.fail(&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)})
	}

	// Validate surfaces conflicts nested below the root, which Err does not.
	value := ctx.BuildInstance(inst)
	if err := value.Validate(); err != nil {
		return l.fail(fromCUE(ErrCodeBuildFailed, err))
	}

	relsVal := value.LookupPath(cue.ParsePath("relation"))
	if !relsVal.Exists() {
		return false
	}
	iter, err := relsVal.Fields()
	if err != nil {
		return l.fail(&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating relations: %v", err)})
	}
	for iter.Next() {
		rel, err := CompileRelation(iter.Value())
		if err != nil {
			if l.fail(err) {
				return true
			}
			continue
		}
		if l.add(rel, &LoadError{Pos: iter.Value().Pos()}) {
			return true
		}
	}
	return false
}

func (l *loader) loadYAML(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return l.fail(&LoadError{Code: ErrCodeLoadFailed, Message: err.Error(), File: path})
	}
	rels, lines, errs := ParseYAML(path, data)
	for _, err := range errs {
		if l.fail(err) {
			return true
		}
	}
	for i, rel := range rels {
		if l.add(rel, &LoadError{File: path, Line: lines[i]}) {
			return true
		}
	}
	return false
}

// FindSpecFiles walks dir and returns CUE and YAML file paths, each sorted.
func FindSpecFiles(dir string) (cueFiles, yamlFiles []string, err error) {
	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".cue":
			cueFiles = append(cueFiles, path)
		case ".yaml", ".yml":
			yamlFiles = append(yamlFiles, path)
		}
		return nil
	})
	sort.Strings(cueFiles)
	sort.Strings(yamlFiles)
	return cueFiles, yamlFiles, err
}

// classify maps a schema validation error to a load error code.
func classify(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "duplicate"):
		return ErrCodeDuplicate
	case strings.Contains(msg, "unknown field type"):
		return ErrCodeInvalidType
	case strings.Contains(msg, "at least one field"):
		return ErrCodeNoFields
	case strings.Contains(msg, "index"):
		return ErrCodeInvalidIndex
	case strings.Contains(msg, "field"):
		return ErrCodeFieldName
	case strings.Contains(msg, "relation name"):
		return ErrCodeRelationName
	default:
		return ErrCodeGeneric
	}
}
