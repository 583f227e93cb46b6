package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/midbel/xpath/xpath"
)

var astCmd AstCmd

type AstCmd struct{}

func (c *AstCmd) Run(args []string) error {
	set := flag.NewFlagSet("ast", flag.ContinueOnError)
	if err := set.Parse(args); err != nil {
		return err
	}
	expr, err := xpath.ParseString(set.Arg(0))
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, xpath.Debug(expr))
	return nil
}
