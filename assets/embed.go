// Where: assets/embed.go
// What: Embed plugin templates and patches.
// Why: Ship bundled files inside the binary and hand them to the resource provider.
package assets

import "embed"

//go:embed templates patches
var FS embed.FS
