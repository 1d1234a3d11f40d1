package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/lexgen/internal/ctxlog"
	"github.com/vk/lexgen/internal/fsutil"
	"github.com/vk/lexgen/internal/rule"
	"github.com/zclconf/go-cty/cty"
)

// Edge is a declared dependency from a scanner rule onto a parser rule's
// generated header.
type Edge struct {
	Scanner string
	Parser  string
}

// Model is the translated content of all loaded manifest files: rule
// configurations in file order plus the declared dependency edges.
type Model struct {
	Rules []rule.Config
	Edges []Edge
}

// Loader parses HCL manifest files into the agnostic Model.
type Loader struct {
	evalCtx *hcl.EvalContext
}

// NewLoader creates a manifest loader. The eval context may be nil when no
// tool facts are available yet (plan-only tests).
func NewLoader(evalCtx *hcl.EvalContext) *Loader {
	return &Loader{evalCtx: evalCtx}
}

// Load parses every .hcl file under the given path (a file or a directory)
// and translates all scanner/parser blocks. Each rule's source root is fixed
// to the directory of the manifest that declared it.
func (l *Loader) Load(ctx context.Context, path string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := l.findManifestFiles(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl manifest files found under %s", path)
	}
	logger.Debug("Discovered manifest files.", "count", len(files))

	model := &Model{}
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse manifest %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, l.evalCtx, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode manifest %s: %w", file, diags)
		}
		if err := rejectUnknown(root.Remain, file, "manifest", "scanner and parser blocks"); err != nil {
			return nil, err
		}

		sourceRoot := filepath.Dir(file)
		for _, block := range root.Scanners {
			if err := rejectUnknown(block.Remain, file, fmt.Sprintf("scanner %q", block.Name), scannerSignature); err != nil {
				return nil, err
			}
			model.Rules = append(model.Rules, rule.Config{
				Name:         block.Name,
				Kind:         rule.KindScanner,
				Input:        block.Input,
				Output:       block.Output,
				CompileFlags: block.CompileFlags,
				DefinesFile:  block.DefinesFile,
				SourceRoot:   sourceRoot,
			})
			deps, err := l.dependencyNames(block.DependsOn)
			if err != nil {
				return nil, fmt.Errorf("scanner %q in %s: invalid depends_on: %w", block.Name, file, err)
			}
			for _, dep := range deps {
				model.Edges = append(model.Edges, Edge{Scanner: block.Name, Parser: dep})
			}
		}
		for _, block := range root.Parsers {
			if err := rejectUnknown(block.Remain, file, fmt.Sprintf("parser %q", block.Name), parserSignature); err != nil {
				return nil, err
			}
			model.Rules = append(model.Rules, rule.Config{
				Name:         block.Name,
				Kind:         rule.KindParser,
				Input:        block.Input,
				Output:       block.Output,
				CompileFlags: block.CompileFlags,
				DefinesFile:  block.DefinesFile,
				SourceRoot:   sourceRoot,
			})
		}
	}

	logger.Debug("Manifest loading complete.", "rules", len(model.Rules), "edges", len(model.Edges))
	return model, nil
}

// dependencyNames resolves a depends_on expression into parser rule names.
// References in the form parser.<name> are extracted from the expression's
// traversals and resolve to the rule name itself, so both
// `depends_on = [parser.grammar]` and `depends_on = ["grammar"]` work.
func (l *Loader) dependencyNames(expr hcl.Expression) ([]string, error) {
	if expr == nil {
		return nil, nil
	}

	refs := make(map[string]cty.Value)
	for _, traversal := range expr.Variables() {
		if traversal.RootName() != "parser" || len(traversal) < 2 {
			continue
		}
		if attr, ok := traversal[1].(hcl.TraverseAttr); ok {
			refs[attr.Name] = cty.StringVal(attr.Name)
		}
	}

	evalCtx := l.evalCtx
	if len(refs) > 0 {
		if evalCtx != nil {
			evalCtx = evalCtx.NewChild()
			evalCtx.Variables = map[string]cty.Value{"parser": cty.ObjectVal(refs)}
		} else {
			evalCtx = &hcl.EvalContext{Variables: map[string]cty.Value{"parser": cty.ObjectVal(refs)}}
		}
	}

	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.CanIterateElements() {
		return nil, fmt.Errorf("depends_on must be a list of rule names or parser.<name> references")
	}

	var names []string
	for it := val.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		if elem.IsNull() || elem.Type() != cty.String {
			return nil, fmt.Errorf("depends_on elements must be rule names or parser.<name> references")
		}
		names = append(names, elem.AsString())
	}
	return names, nil
}

// rejectUnknown turns any leftover attribute or block into a hard error that
// names the accepted signature. Absence of optional attributes is fine; an
// unrecognized one never is.
func rejectUnknown(remain hcl.Body, file, where, signature string) error {
	if remain == nil {
		return nil
	}
	attrs, diags := remain.JustAttributes()
	if diags.HasErrors() {
		// Nested blocks land here; they are just as unrecognized.
		return fmt.Errorf("%s in %s contains unsupported blocks; accepted signature: %s", where, file, signature)
	}
	if len(attrs) == 0 {
		return nil
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Errorf("%s in %s has unrecognized arguments [%s]; accepted signature: %s",
		where, file, strings.Join(names, ", "), signature)
}

// findManifestFiles accepts either a single .hcl file or a directory tree.
func (l *Loader) findManifestFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing manifest path %s: %w", path, err)
	}
	if !info.IsDir() {
		if filepath.Ext(path) != ".hcl" {
			return nil, fmt.Errorf("manifest %s is not an .hcl file", path)
		}
		return []string{path}, nil
	}
	files, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
