// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/packforge/packforge/cmd/packforge"

func main() {
	cmd.Execute()
}
