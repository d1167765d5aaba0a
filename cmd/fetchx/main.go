// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command fetchx issues HTTP requests from the command line.
package main

import (
	"os"

	"github.com/gogama/fetchx/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
