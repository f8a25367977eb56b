// Package entitymodel serves the OpenAPI contract of the bench HTTP API.
package entitymodel

import (
	_ "embed"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v2"
)

//go:embed bench-api.yaml
var benchAPISpec []byte

// OpenAPISpec returns a copy of the embedded OpenAPI YAML.
func OpenAPISpec() []byte {
	return append([]byte(nil), benchAPISpec...)
}

// NewOpenAPIHandler serves the embedded document as application/yaml.
func NewOpenAPIHandler() http.Handler {
	spec := OpenAPISpec()
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(spec)
	})
}

type document struct {
	Info struct {
		Version string `yaml:"version"`
	} `yaml:"info"`
	Paths map[string]map[string]yaml.MapSlice `yaml:"paths"`
}

var (
	docOnce sync.Once
	doc     document
	docErr  error
)

func load() (document, error) {
	docOnce.Do(func() {
		if err := yaml.Unmarshal(benchAPISpec, &doc); err != nil {
			docErr = fmt.Errorf("parse openapi document: %w", err)
		}
	})
	return doc, docErr
}

// Version returns info.version of the contract, or "" when it cannot be read.
func Version() string {
	d, err := load()
	if err != nil {
		return ""
	}
	return d.Info.Version
}

// Operation is one documented method and path, with the path in OpenAPI
// template form ("/samples/{id}/water").
type Operation struct {
	Method string
	Path   string
}

// Operations lists the documented operations sorted by path then method.
// Methods are upper case.
func Operations() ([]Operation, error) {
	d, err := load()
	if err != nil {
		return nil, err
	}
	var ops []Operation
	for path, methods := range d.Paths {
		for method := range methods {
			ops = append(ops, Operation{Method: strings.ToUpper(method), Path: path})
		}
	}
	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Path != ops[j].Path {
			return ops[i].Path < ops[j].Path
		}
		return ops[i].Method < ops[j].Method
	})
	return ops, nil
}
