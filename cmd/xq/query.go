package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/midbel/xpath/cmd/cli"
	"github.com/midbel/xpath/xdm"
	"github.com/midbel/xpath/xpath"
)

var queryCmd QueryCmd

type QueryCmd struct {
	Limit  int
	Text   bool
	Quiet  bool
	Timing bool
	NoSpin bool
	ParserOptions
}

const queryInfo = "query took %s - %d items matching %q"

func (q *QueryCmd) Run(args []string) error {
	var (
		set     = flag.NewFlagSet("query", flag.ContinueOnError)
		options []xpath.Option
		evals   []xpath.EvalOption
	)
	set.IntVar(&q.Limit, "limit", 0, "limit number of results returned by query")
	set.BoolVar(&q.Text, "text", false, "print only the value of each result")
	set.BoolVar(&q.Quiet, "quiet", false, "suppress output - default is to print the result nodes")
	set.BoolVar(&q.Timing, "timing", false, "report query time and result count")
	set.BoolVar(&q.NoSpin, "no-spin", false, "disable the progress spinner")
	set.BoolVar(&q.StrictNS, "strict-ns", false, "strict namespace checking")
	set.BoolVar(&q.KeepEmpty, "keep-empty", false, "keep whitespace only text nodes")
	set.BoolVar(&q.Json, "json", false, "read the document as json")
	set.Func("config", "evaluation context file", func(file string) error {
		so, eo, err := loadContext(file)
		if err == nil {
			options, evals = so, eo
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
	evals = append(evals, xpath.WithResolver(func(uri string) (xdm.Node, error) {
		return parseDocument(uri, q.ParserOptions)
	}))
	var (
		now     = time.Now()
		results xdm.Sequence
		run     = func() error {
			doc, err := parseDocument(set.Arg(1), q.ParserOptions)
			if err != nil {
				return err
			}
			stream, err := exec.Evaluate(xpath.NewContext(doc, evals...))
			if err != nil {
				return err
			}
			results, err = collectLimit(stream, q.Limit)
			return err
		}
	)
	if q.NoSpin {
		err = run()
	} else {
		spin := cli.NewSpinner()
		spin.SetMessage("querying")
		spin.Run(func() { err = run() })
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(now)
	if !q.Quiet {
		printItems(results, q.Text)
	}
	if q.Timing {
		fmt.Fprintf(os.Stdout, queryInfo, elapsed, results.Len(), set.Arg(0))
		fmt.Fprintln(os.Stdout)
	}
	if results.Len() == 0 {
		return errFail
	}
	return nil
}

// collectLimit pulls the stream into a sequence, stopping after limit
// items when limit is positive. The tail of the stream is never built.
func collectLimit(stream *xpath.Stream, limit int) (xdm.Sequence, error) {
	results := xdm.NewSequence()
	for {
		if limit > 0 && results.Len() >= limit {
			return results, nil
		}
		it, err := stream.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return results, nil
			}
			return nil, err
		}
		results.Append(it)
	}
}
