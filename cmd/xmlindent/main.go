// Command xmlindent is the CLI deliverable described in spec.md §6:
// a pretty-printer over pkg/xmlfmt that accepts a file or directory, or
// walks the current directory for *.xml/*.xsd when given no arguments.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
