// Command dirscan scans a directory tree and reports aggregate statistics.
package main

import (
	"fmt"
	"os"

	"github.com/idelchi/dirscan/internal/cli"
)

// version is set at build time.
//
//nolint:gochecknoglobals // Set by ldflags
var version = "unknown - unofficial & generated by unknown"

func main() {
	if err := cli.New(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dirscan:", err)
		os.Exit(1)
	}
}
