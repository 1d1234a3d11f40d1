package manifest

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/vk/lexgen/internal/locator"
	"github.com/zclconf/go-cty/cty"
)

// BuildEvalContext exposes discovered tool facts to manifest expressions, so
// a rule can interpolate e.g. "${flex.version}" or "${bison.executable}".
// A nil tool is published as an object with empty fields rather than being
// omitted, keeping expressions against an optional tool decodable.
func BuildEvalContext(tools ...*locator.Tool) *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, tool := range tools {
		if tool == nil {
			continue
		}
		vars[tool.Name] = cty.ObjectVal(map[string]cty.Value{
			"executable": cty.StringVal(tool.Path),
			"version":    cty.StringVal(tool.Version),
		})
	}
	for _, name := range []string{"flex", "bison"} {
		if _, ok := vars[name]; !ok {
			vars[name] = cty.ObjectVal(map[string]cty.Value{
				"executable": cty.StringVal(""),
				"version":    cty.StringVal(""),
			})
		}
	}
	return &hcl.EvalContext{Variables: vars}
}
