// Command annotatorctl is a headless companion to the annotator library:
// format conversion and sanity checks runnable outside any Viewer, for CI
// pipelines and one-off inspection of exported annotation data.
package main

import "github.com/annota/core/cmd/annotatorctl/commands"

func main() {
	commands.Execute()
}
