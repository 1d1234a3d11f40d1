// Package manifest parses HCL manifest files into generation-rule
// configurations and dependency edges. Manifest expressions can reference
// discovered tool facts (executable path, version) through an evaluation
// context built from the locator's results.
package manifest
