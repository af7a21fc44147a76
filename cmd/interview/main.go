// Command interview-agent runs a voice mock interview against the
// evaluation service and keeps a local history of the reports.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
