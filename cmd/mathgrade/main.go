// cmd/mathgrade: command line front end for the grading engine.
//
// Usage:
//
//	mathgrade normalize '2x + 3'
//	mathgrade equiv --verbose 'sin^2(x) + cos^2(x)' 1
//	mathgrade latex '\frac{1}{2}x'
//	mathgrade serve
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errNotEquivalent) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
