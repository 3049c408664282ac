package dataimport

import (
	"fmt"
	"maps"
	"regexp"
	"strings"

	"github.com/datazip-inc/olake-pager/constants"
	"github.com/datazip-inc/olake-pager/pkg/cursor"
	"github.com/datazip-inc/olake-pager/types"
	"github.com/datazip-inc/olake-pager/utils/typeutils"
)

var (
	tokenPattern    = regexp.MustCompile(`\$\{([^}]+)\}`)
	functionPattern = regexp.MustCompile(`^dataimporter\.functions\.(\w+)\((.*)\)$`)
)

// EntityContext carries the attributes and variables of one entity run.
// It is owned by a single importer goroutine.
type EntityContext struct {
	attributes map[string]string
	variables  map[string]any
	process    types.ProcessType
}

var _ cursor.Context = (*EntityContext)(nil)

// NewEntityContext keeps only the non-empty attributes, an empty template
// behaves as if it was never configured
func NewEntityContext(attributes map[string]string, process types.ProcessType) *EntityContext {
	attrs := make(map[string]string, len(attributes))
	for k, v := range attributes {
		if strings.TrimSpace(v) != "" {
			attrs[k] = v
		}
	}
	return &EntityContext{
		attributes: attrs,
		variables:  map[string]any{},
		process:    process,
	}
}

func (e *EntityContext) Attribute(name string) (string, bool) {
	v, ok := e.attributes[name]
	return v, ok
}

func (e *EntityContext) Resolve(name string) (any, bool) {
	v, ok := e.variables[name]
	return v, ok
}

func (e *EntityContext) Process() types.ProcessType {
	return e.process
}

func (e *EntityContext) SetProcess(process types.ProcessType) {
	e.process = process
}

func (e *EntityContext) SetVariable(name string, value any) {
	e.variables[name] = value
}

// SetDeltaValues exposes a modified row key as dataimporter.delta.<column>,
// replacing the previous key
func (e *EntityContext) SetDeltaValues(key types.Row) {
	for name := range e.variables {
		if strings.HasPrefix(name, constants.DeltaNamespace) {
			delete(e.variables, name)
		}
	}
	for col, val := range key {
		e.variables[constants.DeltaNamespace+col] = val
	}
}

// SetRequestParams exposes user supplied parameters as dataimporter.request.<name>
func (e *EntityContext) SetRequestParams(params map[string]string) {
	for k, v := range params {
		e.variables[constants.RequestNamespace+k] = v
	}
}

// Variables returns a copy of every variable currently set
func (e *EntityContext) Variables() map[string]any {
	return maps.Clone(e.variables)
}

// ReplaceTokens substitutes ${name} with the variable value. Unknown
// variables render as an empty string. escapeSql is available as
// ${dataimporter.functions.escapeSql(name)}.
func (e *EntityContext) ReplaceTokens(text string) string {
	return tokenPattern.ReplaceAllStringFunc(text, func(token string) string {
		name := strings.TrimSpace(token[2 : len(token)-1])

		if m := functionPattern.FindStringSubmatch(name); m != nil {
			return e.call(m[1], strings.TrimSpace(m[2]))
		}

		val, found := e.variables[name]
		if !found || val == nil {
			return ""
		}
		return fmt.Sprint(typeutils.ReformatValue(val))
	})
}

func (e *EntityContext) call(function, arg string) string {
	val, found := e.variables[arg]
	if !found {
		// literal argument, e.g. escapeSql('O'Brien')
		val = strings.Trim(arg, "'")
	}
	text := fmt.Sprint(typeutils.ReformatValue(val))

	switch function {
	case "escapeSql":
		return strings.ReplaceAll(text, "'", "''")
	default:
		return text
	}
}
