package rule

// Kind distinguishes which generator a rule drives.
type Kind string

const (
	// KindScanner rules invoke the lexer generator (flex).
	KindScanner Kind = "scanner"

	// KindParser rules invoke the parser generator (bison).
	KindParser Kind = "parser"
)

// headerFlag returns the generator flag that requests header emission at path.
func (k Kind) headerFlag(path string) string {
	if k == KindParser {
		return "--defines=" + path
	}
	return "--header-file=" + path
}

// Rule is one registered generation step. Fields are populated once by
// Registry.Register and treated as immutable afterwards, except ExtraInputs
// which dependency edges may append to.
type Rule struct {
	Name string
	Kind Kind

	// Input is the grammar file the generator consumes.
	Input string

	// Output is the primary generated source file.
	Output string

	// Outputs is the full output set: Output first, then any generated header.
	Outputs []string

	// Flags is the resolved argument list, header-emission flag last.
	Flags []string

	// HeaderPath is the generated header, or "" when none was requested.
	HeaderPath string

	// SourceRoot is the working directory for the generator invocation.
	SourceRoot string

	// ExtraInputs are compile-order inputs added by dependency edges, such as
	// a companion parser's generated header.
	ExtraInputs []string

	// DependsOn names the rules this one is ordered after. Recorded alongside
	// ExtraInputs so ordering never has to be re-derived from a header path,
	// which is not unique across source roots.
	DependsOn []string

	// Defined reports that registration completed successfully.
	Defined bool
}

// Command returns the full argv for this rule's generation step:
// executable, flags, the output-targeting flag bound to the primary output,
// then the input.
func (r *Rule) Command(executable string) []string {
	argv := make([]string, 0, len(r.Flags)+3)
	argv = append(argv, executable)
	argv = append(argv, r.Flags...)
	argv = append(argv, "-o"+r.Output)
	argv = append(argv, r.Input)
	return argv
}
