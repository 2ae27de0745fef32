// Package schema embeds the JSON schema that test manifests are validated
// against, whatever their on-disk format.
package schema

import "embed"

// FS holds manifest.schema.json.
//
//go:embed manifest.schema.json
var FS embed.FS
