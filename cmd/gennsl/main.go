// Copyright (c) 2024, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command gennsl builds a spiking-neural-network model, compiles it into
// a shared library, and runs the result: "generate" emits C source,
// "build" compiles it, and "run" drives the loaded simulation.
package main

import "github.com/snncore/gennsl/cmd/gennsl/cli"

func main() {
	cli.Execute()
}
