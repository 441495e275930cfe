// Command myjql is the line-oriented shell front end for a single
// on-disk table: program <db-file>.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"myjql/internal/btree"
	"myjql/internal/dispatch"
	"myjql/internal/pager"
	"myjql/internal/shell"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Must supply a database filename.")
		os.Exit(1)
	}

	tree, err := btree.Open(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer tree.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		tree.Close()
		os.Exit(0)
	}()

	disp := dispatch.New(tree)
	sh := shell.New(os.Stdin, os.Stdout, disp)
	if err := sh.Run(); err != nil {
		var fatal *pager.FatalError
		if errors.As(err, &fatal) {
			fmt.Fprintln(os.Stderr, fatal.Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		tree.Close()
		os.Exit(1)
	}
}
