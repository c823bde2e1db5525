// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/cargoshim/cargoshim/cmd/cargoshim"

func main() {
	cmd.Execute()
}
