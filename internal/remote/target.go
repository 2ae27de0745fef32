// Package remote runs checks on a booted image over a command transport and
// classifies their outcome.
package remote

import (
	"context"
	"time"
)

// Target runs a shell command on the system under test.
//
// Implementations never return an error: transport problems are reported
// in-band through status and output, using the signatures understood by the
// classify package (255 + "Failed to connect", 254 / "Connection lost").
type Target interface {
	Run(ctx context.Context, command string, timeout time.Duration) (status int, output string)
}

// Status codes returned by Target implementations.
const (
	StatusTimeout        = 124
	StatusNotFound       = 127
	StatusConnectionLost = 254
	StatusConnectFailed  = 255
)
