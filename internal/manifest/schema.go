package manifest

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes all recognized top-level blocks from a manifest file.
// Anything outside these blocks is rejected by the loader.
type fileRoot struct {
	Scanners []*scannerBlock `hcl:"scanner,block"`
	Parsers  []*parserBlock  `hcl:"parser,block"`
	Remain   hcl.Body        `hcl:",remain"`
}

// scannerBlock is the HCL shape of one lexer-generation rule.
type scannerBlock struct {
	Name         string   `hcl:"name,label"`
	Input        string   `hcl:"input"`
	Output       string   `hcl:"output"`
	CompileFlags string   `hcl:"compile_flags,optional"`
	DefinesFile  string   `hcl:"defines_file,optional"`

	// DependsOn stays an undecoded expression so parser.<name> references
	// can be resolved by traversal instead of evaluation.
	DependsOn hcl.Expression `hcl:"depends_on,optional"`
	Remain    hcl.Body       `hcl:",remain"`
}

// parserBlock is the HCL shape of one parser-generation rule.
type parserBlock struct {
	Name         string   `hcl:"name,label"`
	Input        string   `hcl:"input"`
	Output       string   `hcl:"output"`
	CompileFlags string   `hcl:"compile_flags,optional"`
	DefinesFile  string   `hcl:"defines_file,optional"`
	Remain       hcl.Body `hcl:",remain"`
}

// scannerSignature and parserSignature name the accepted call shape in
// registration errors, so a typo'd attribute points at the fix.
const (
	scannerSignature = `scanner "<name>" { input, output, [compile_flags], [defines_file], [depends_on] }`
	parserSignature  = `parser "<name>" { input, output, [compile_flags], [defines_file] }`
)
