// Command dict2sql compiles query documents to SQL.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/dict2sql/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
