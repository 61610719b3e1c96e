// starwatch - Remote STAR-CCM+ Simulation Monitor
//
// starwatch polls a simulation host over SFTP, extracts convergence and
// report data from the solver log, and keeps a composite status image
// up to date.
package main

import (
	"os"

	"github.com/cfdtools/starwatch/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
