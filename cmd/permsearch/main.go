// Command permsearch searches ±1 structured matrices for the minimum positive
// permanent and compares it with Kräuter's conjectured value.
//
//	permsearch run --n 8 --family triangular-toeplitz
//	permsearch parallel --n 9 --family hankel --mode ratio --shards 8
//	permsearch perm 'T_3{-1,0,2}'
//	permsearch conjecture 5 10 20
//	permsearch count toeplitz 6
//	permsearch estimate triangular-hankel 12
//	permsearch history --store runs.db
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
