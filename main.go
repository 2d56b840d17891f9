// =============================================================================
// Wisconsin Excise XML - Main Entry Point
// =============================================================================
//
// USAGE:
//   excise generate <file-or-dir>   - Convert shipment files into XML filings
//   excise validate <file.xml>      - Check a filing against the state schema
//   excise serve                    - Serve the JSON API for the web form
//   excise version                  - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Core business logic (not for external import)
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/wi-excise-xml/cmd"
)

func main() {
	cmd.Execute()
}
