// assetparser resolves every client asset a set of map tiles depends on and
// packages those files for distribution.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "resolve":
		err = cmdResolve(args)
	case "package", "pkg":
		err = cmdPackage(args)
	case "run":
		err = cmdRun(args)
	case "inspect", "info":
		err = cmdInspect(args)
	case "config":
		err = cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`assetparser - map asset dependency resolver

Usage:
  assetparser <command> [options]

Commands:
  resolve              Parse terrain tiles and write the asset manifest
  package              Copy the files named in the manifest to a destination
  run                  Resolve, then package
  inspect <file>...    Print the references stored in .adt, .wmo or .m2 files
  config               Print the effective config (-save or -save-to <file> to write it)

Options:
  -config <file>       Config file (default ./assetparser.yaml)
  -terrain <dir>       Directory of .adt files
  -data <dir>          Data root asset paths resolve against
  -output <file>       Manifest path (default assets.txt)
  -dest <dir>          Packaging destination
  -ignore <dir>        Skip files already present here when packaging
  -aux-objects <dir>   Extra directory searched for .wmo files
  -aux-models <dir>    Extra directory searched for .m2 files
  -workers <n>         Concurrent copies (default one per CPU)
  -full-closure        Repeat passes until no new assets are found
  -metrics <file>      Write Prometheus metrics to a textfile
  -debug               Enable debug logging

Examples:
  assetparser resolve -data ./Data -terrain ./Data/World/Maps/Azeroth
  assetparser package -data ./Data -dest ./Patch -ignore ./BaseData
  assetparser inspect ./Data/World/wmo/Stormwind.wmo`)
}
