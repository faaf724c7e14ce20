// Command salesdb loads retail sales tables and runs the sales queries.
package main

import (
	"os"

	"github.com/roach88/salesdb/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
