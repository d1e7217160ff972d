// Package main is the mvbb command line tool: it reads a point cloud and prints an approximate
// minimum volume oriented bounding box.
package main

import (
	"os"

	"go.viam.com/mvbb/logging"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		logging.Global().Error(err)
		os.Exit(1)
	}
}
