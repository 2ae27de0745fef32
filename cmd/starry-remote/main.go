// Command starry-remote runs check sets against a booted image over SSH.
package main

import (
	"os"

	"github.com/starry-os/starry-test-harness/internal/cli"
)

func main() {
	os.Exit(cli.RunRemote(os.Args[1:]))
}
