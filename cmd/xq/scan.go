package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/midbel/xpath/xpath"
)

var scanCmd ScanCmd

type ScanCmd struct{}

func (c *ScanCmd) Run(args []string) error {
	set := flag.NewFlagSet("scan", flag.ContinueOnError)
	if err := set.Parse(args); err != nil {
		return err
	}
	scan := xpath.Scan(strings.NewReader(set.Arg(0)))
	for {
		tok := scan.Scan()
		fmt.Fprintf(os.Stdout, "%d:%d %s", tok.Line, tok.Column, tok)
		fmt.Fprintln(os.Stdout)
		if tok.Type == xpath.EOF {
			break
		}
	}
	return nil
}
