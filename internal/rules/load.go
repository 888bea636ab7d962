package rules

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/tactica/internal/expr"
)

// Load error codes (E001-E099), shared with the command line.
const (
	ErrCodeGeneric     = "E001" // generic/unknown error
	ErrCodeScanError   = "E002" // directory scan error
	ErrCodeNoFiles     = "E003" // no rule files found
	ErrCodeParseFailed = "E004" // YAML or CUE syntax/shape error
	ErrCodeNotFound    = "E005" // path not found
	ErrCodeBuildFailed = "E006" // CUE evaluation failed
	ErrCodeDuplicate   = "E008" // same rule name in two files
)

// LoadError is a problem reading rule files.
type LoadError struct {
	Code    string
	Message string
	File    string
	Line    int
	Err     error
}

func (e *LoadError) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Code, e.Message)
	case e.File != "":
		return fmt.Sprintf("%s: %s: %s", e.File, e.Code, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ruleDoc is the on-disk shape shared by YAML and CUE (via JSON).
type ruleDoc struct {
	Name        string    `yaml:"name" json:"name"`
	Description string    `yaml:"description" json:"description"`
	When        expr.Node `yaml:"when" json:"when"`
}

type yamlFile struct {
	Rules []ruleDoc `yaml:"rules"`
}

// LoadYAML reads a YAML rule file.
func LoadYAML(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: err.Error(), File: path, Err: err}
	}
	return ParseYAML(data, path)
}

// ParseYAML decodes YAML rule data. Unknown fields are rejected. name is used
// in error messages and as Rule.Source.
func ParseYAML(data []byte, name string) ([]Rule, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file yamlFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: err.Error(), File: name, Err: err}
	}

	lines := ruleLines(data)
	out := make([]Rule, 0, len(file.Rules))
	for i, doc := range file.Rules {
		line := 0
		if i < len(lines) {
			line = lines[i]
		}
		r, err := fromDoc(doc, name, line)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// ruleLines returns the line of each entry under the top-level rules key.
func ruleLines(data []byte) []int {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil || len(root.Content) == 0 {
		return nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value != "rules" {
			continue
		}
		var lines []int
		for _, item := range doc.Content[i+1].Content {
			lines = append(lines, item.Line)
		}
		return lines
	}
	return nil
}

// LoadCUE reads a CUE rule file.
func LoadCUE(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: err.Error(), File: path, Err: err}
	}
	return ParseCUE(data, path)
}

// ParseCUE evaluates CUE rule data. Rules are the fields of the top-level
// rule struct, in declaration order.
func ParseCUE(data []byte, name string) ([]Rule, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(name))
	if err := value.Err(); err != nil {
		return nil, cueLoadError(ErrCodeBuildFailed, err, name)
	}

	rulesVal := value.LookupPath(cue.ParsePath("rule"))
	if !rulesVal.Exists() {
		return nil, nil
	}
	iter, err := rulesVal.Fields()
	if err != nil {
		return nil, cueLoadError(ErrCodeParseFailed, err, name)
	}

	var out []Rule
	for iter.Next() {
		v := iter.Value()
		if err := v.Validate(cue.Concrete(true)); err != nil {
			return nil, cueLoadError(ErrCodeBuildFailed, err, name)
		}
		raw, err := v.MarshalJSON()
		if err != nil {
			return nil, cueLoadError(ErrCodeBuildFailed, err, name)
		}

		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		var doc ruleDoc
		if err := dec.Decode(&doc); err != nil {
			return nil, &LoadError{
				Code:    ErrCodeParseFailed,
				Message: fmt.Sprintf("rule %s: %v", iter.Label(), err),
				File:    name,
				Line:    v.Pos().Line(),
				Err:     err,
			}
		}
		if doc.Name == "" {
			doc.Name = iter.Label()
		}

		r, err := fromDoc(doc, name, v.Pos().Line())
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// cueLoadError keeps the position of the first CUE error.
func cueLoadError(code string, err error, file string) *LoadError {
	le := &LoadError{Code: code, Message: err.Error(), File: file, Err: err}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return le
	}
	le.Message = errs[0].Error()
	if positions := cueerrors.Positions(errs[0]); len(positions) > 0 {
		le.Line = positions[0].Line()
	}
	return le
}

func fromDoc(doc ruleDoc, source string, line int) (Rule, error) {
	h, err := HashNode(doc.When)
	if err != nil {
		return Rule{}, &LoadError{
			Code:    ErrCodeParseFailed,
			Message: fmt.Sprintf("rule %q: %v", doc.Name, err),
			File:    source,
			Line:    line,
			Err:     err,
		}
	}
	return Rule{
		Name:        doc.Name,
		Description: doc.Description,
		When:        doc.When,
		Hash:        h,
		Source:      source,
		Line:        line,
	}, nil
}

// IsRuleFile reports whether path has a rule file extension.
func IsRuleFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".cue":
		return true
	}
	return false
}

// LoadFile loads one rule file, choosing the format by extension.
func LoadFile(path string) ([]Rule, error) {
	if strings.ToLower(filepath.Ext(path)) == ".cue" {
		return LoadCUE(path)
	}
	return LoadYAML(path)
}

// LoadPath loads a rule file, or every rule file under a directory in path
// order. A rule name defined in two files is an error.
func LoadPath(path string) ([]Rule, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("rules path not found: %v", err), File: path, Err: err}
	}
	if !info.IsDir() {
		return LoadFile(path)
	}

	files, err := FindRuleFiles(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("scanning directory: %v", err), File: path, Err: err}
	}
	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: "no .yaml, .yml or .cue files found", File: path}
	}

	var out []Rule
	defined := make(map[string]Rule)
	for _, f := range files {
		rs, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		for _, r := range rs {
			if first, dup := defined[r.Name]; dup && r.Name != "" {
				return nil, &LoadError{
					Code:    ErrCodeDuplicate,
					Message: fmt.Sprintf("rule %q already defined at %s", r.Name, first.Where()),
					File:    r.Source,
					Line:    r.Line,
				}
			}
			defined[r.Name] = r
			out = append(out, r)
		}
	}
	return out, nil
}

// FindRuleFiles walks dir and returns rule file paths, sorted.
func FindRuleFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsRuleFile(path) {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}
