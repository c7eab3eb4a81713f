// Command contactsync stores contacts in a SQLite contacts provider.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/contactsync/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
