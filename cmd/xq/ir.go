package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/midbel/xpath/xpath"
)

var irCmd IrCmd

type IrCmd struct{}

func (c *IrCmd) Run(args []string) error {
	var (
		set     = flag.NewFlagSet("ir", flag.ContinueOnError)
		options []xpath.Option
	)
	set.Func("config", "evaluation context file", func(file string) error {
		so, _, err := loadContext(file)
		if err == nil {
			options = so
		}
		return err
	})
	if err := set.Parse(args); err != nil {
		return err
	}
	exec, err := xpath.CompileString(set.Arg(0), options...)
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, exec.String())
	return nil
}
