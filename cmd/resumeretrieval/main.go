// Command resumeretrieval runs the resume hybrid retrieval service.
package main

import (
	"fmt"
	"os"

	"github.com/Aman-CERP/resumeretrieval/cmd/resumeretrieval/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
