// Package app wires the application together: it configures logging, locates
// the generator tools, loads manifests into the rule registry, builds the
// plan, and drives execution.
package app
