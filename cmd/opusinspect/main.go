// Command opusinspect examines Ogg Opus files.
//
// Usage:
//
//	opusinspect [flags] <command> <file>
//
// Commands:
//
//	headers  - Print the identification and comment headers
//	packets  - Print the framing of every audio packet
//	decode   - Decode wideband SILK streams to raw S16LE PCM
//
// A file name of "-" reads standard input.
package main

import (
	"fmt"
	"os"

	"github.com/thesyncim/opusframe/cmd/opusinspect/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
