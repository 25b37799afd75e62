package alloc

import (
	"fmt"
	"os"
)

// fatal reports an unrecoverable condition and never returns. There is no
// rollback: the Directory may be mid-update when this runs.
func (a *Allocator) fatal(reason string, err error) {
	fe := &FatalError{Reason: reason, Err: err}
	a.log.Error("allocator fatal", "reason", reason, "error", err)
	if a.opts.Fatal != nil {
		a.opts.Fatal(fe.Error())
	}
	panic(fe)
}

// ExitOnFatal is an Options.Fatal hook that prints the reason and terminates
// the process with status 2.
func ExitOnFatal(reason string) {
	fmt.Fprintln(os.Stderr, reason)
	os.Exit(2)
}
