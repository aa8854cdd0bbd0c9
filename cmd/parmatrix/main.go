// SPDX-License-Identifier: MIT

package main

import (
	"os"

	"github.com/katalvlaran/parmatrix/cmd/parmatrix/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
