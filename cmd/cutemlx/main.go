// Package main is the single-binary entrypoint for cutemlx.
package main

import "github.com/johnmai-dev/CuteMLX/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
