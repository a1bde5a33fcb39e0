// Command zbirka catalogues a personal collection. It works on a local
// SQLite database, serves the catalogue over HTTP, and talks to a remote
// server with the same commands.
package main

import (
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
