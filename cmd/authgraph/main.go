// Command authgraph runs authentication graphs against a Redis development
// backend, either once from the command line or behind an HTTP server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
