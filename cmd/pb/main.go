// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mufeed Ali

package main

import "photobatch/cmd/cli"

func main() {
	cli.RunCLI()
}
