// SPDX-License-Identifier: MIT

// Command deprisk evaluates dependency-risk scenarios and serves the
// incremental engine over HTTP.
//
// Usage:
//
//	deprisk eval scenario.yaml [--json]
//	deprisk serve [--addr :8080] [--capacity 512] [--scenario scenario.yaml]
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
