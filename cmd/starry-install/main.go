// Command starry-install copies the test artifacts of a manifest suite into an
// image root.
package main

import (
	"os"

	"github.com/starry-os/starry-test-harness/internal/cli"
)

func main() {
	os.Exit(cli.RunInstall(os.Args[1:]))
}
