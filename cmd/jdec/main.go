// Command jdec decompiles a single JVM class file into Java-shaped source
// text, pseudocode, or a json-ast dump, per §6's CLI surface.
//
// Grounded on gvm/main.go's flag-parsing + defer/recover shaped main, scaled
// up to a github.com/spf13/cobra root command (`jdec <classfile>`, no
// subcommands) since this CLI has enough flags that a flat flag.Parse call
// would no longer read cleanly.
package main

import "os"

func main() {
	os.Exit(run(os.Args[1:]))
}
