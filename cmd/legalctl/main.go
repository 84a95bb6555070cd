// Command legalctl runs the risk and summary classifiers over local text,
// without the API or the analysis service.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "legalctl:", err)
		os.Exit(1)
	}
}
