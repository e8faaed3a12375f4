// Command anthrocheck validates anthropometric records from files, standard
// input or FHIR R4 bundles.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(newApp(os.Stdin, os.Stdout, os.Stderr)).ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err, os.Stderr))
}

// exitCode reports err on w and maps it to a process exit status.
func exitCode(err error, w io.Writer) int {
	if err == nil {
		return exitValid
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(w, "anthrocheck: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(w, "anthrocheck: %v\n", err)
	return exitContract
}
