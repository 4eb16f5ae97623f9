// yamlv - YAML value tree CLI tool
//
// Usage:
//
//	yamlv fmt [flags] [file...]        Re-emit YAML documents in canonical style
//	yamlv to-json [flags] [file...]    Convert YAML documents to JSON, one per line
//	yamlv from-json [flags] [file...]  Convert JSON values to YAML documents
//	yamlv events [file...]             Print the YAML event stream
//	yamlv version                      Print version info
//
// Several files are converted concurrently; output keeps the order of the
// arguments. If no file is given, reads from stdin.
package main

import (
	"os"

	"github.com/alecthomas/kingpin/v2"
)

const version = "0.1.0"

func main() {
	app := kingpin.New("yamlv", "Convert between YAML, JSON and YAML event streams.")
	app.Version(version)

	c := newCLI(os.Stdin, os.Stdout, os.Stderr)
	c.Register(app)

	kingpin.MustParse(app.Parse(os.Args[1:]))
}
