// Command starry-test-runner runs an installed test suite on the booted image.
package main

import (
	"os"

	"github.com/starry-os/starry-test-harness/internal/cli"
)

func main() {
	os.Exit(cli.RunTests(os.Args[1:]))
}
