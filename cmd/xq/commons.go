package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/midbel/xpath/dom"
	"github.com/midbel/xpath/json"
	"github.com/midbel/xpath/xdm"
	"github.com/midbel/xpath/xpath"
)

type ParserOptions struct {
	StrictNS  bool
	KeepEmpty bool
	Json      bool
}

func parseDocument(file string, options ParserOptions) (*dom.Document, error) {
	r, err := openFile(file)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	doc, err := parseReader(r, file, options)
	if err == nil {
		doc.Uri = file
	}
	return doc, err
}

func parseReader(r io.Reader, file string, options ParserOptions) (*dom.Document, error) {
	if options.Json || filepath.Ext(file) == ".json" {
		return json.Parse(r)
	}
	p := dom.NewParser(r)
	p.StrictNS = options.StrictNS
	p.KeepEmpty = options.KeepEmpty
	p.TrimSpace = !options.KeepEmpty
	return p.Parse()
}

func openFile(file string) (io.ReadCloser, error) {
	if file == "" || file == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	u, err := url.Parse(file)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "http", "https":
		req, err := http.NewRequest(http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("accept", "text/xml")
		res, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, err
		}
		if res.StatusCode != http.StatusOK {
			res.Body.Close()
			return nil, fmt.Errorf("%s: fail to retrieve remote file", file)
		}
		return res.Body, nil
	default:
		return os.Open(file)
	}
}

func printItems(results xdm.Sequence, text bool) {
	for _, it := range results {
		if !text && !it.Atomic() {
			if n, ok := it.Node().(dom.Node); ok {
				fmt.Fprintln(os.Stdout, dom.WriteNode(n))
				continue
			}
		}
		fmt.Fprintln(os.Stdout, it.String())
	}
}

// contextFile is the YAML shape of the -config flag: the static
// environment a query is compiled under plus values for its variables.
type contextFile struct {
	Namespaces map[string]string `yaml:"namespaces"`
	Default    string            `yaml:"default-namespace"`
	Functions  string            `yaml:"function-namespace"`
	BaseURI    string            `yaml:"base-uri"`
	Collation  string            `yaml:"collation"`
	Variables  map[string]string `yaml:"variables"`
}

func loadContext(file string) ([]xpath.Option, []xpath.EvalOption, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, nil, err
	}
	var cfg contextFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", file, err)
	}
	var (
		static []xpath.Option
		eval   []xpath.EvalOption
	)
	for prefix, uri := range cfg.Namespaces {
		static = append(static, xpath.WithNamespace(prefix, uri))
	}
	if cfg.Default != "" {
		static = append(static, xpath.WithDefaultNamespace(cfg.Default))
	}
	if cfg.Functions != "" {
		static = append(static, xpath.WithFunctionNamespace(cfg.Functions))
	}
	if cfg.BaseURI != "" {
		static = append(static, xpath.WithBaseURI(cfg.BaseURI))
	}
	if cfg.Collation != "" {
		static = append(static, xpath.WithCollation(cfg.Collation))
	}
	for name, value := range cfg.Variables {
		static = append(static, xpath.WithVariable(name))
		item := xdm.NewAtomicItem(xdm.String(value))
		eval = append(eval, xpath.WithVariableValue(name, xdm.Singleton(item)))
	}
	return static, eval, nil
}
