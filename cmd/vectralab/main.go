package main

import (
	"fmt"
	"os"

	"vectralab/internal/errors"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorLine(err))
		os.Exit(1)
	}
}

// errorLine renders err as "CODE: message". Argument errors raised by cobra
// itself carry no code and are reported as validation errors.
func errorLine(err error) string {
	if !errors.IsAppError(err) && errors.GetCode(err) == "UNKNOWN" {
		err = errors.WithCode(errors.CodeValidationError, err)
	}
	return fmt.Sprintf("%s: %v", errors.GetCode(err), err)
}
