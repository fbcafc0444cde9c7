// repolex extracts normalized lexical tokens from source-code identifiers.
// Point it at a repository and it clones, classifies, parses, and streams
// split+stemmed tokens.
package main

import (
	"os"

	"github.com/corey/repolex/cmd/repolex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
