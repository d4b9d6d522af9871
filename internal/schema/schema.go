// Package schema validates stored invoice documents against an embedded
// CUE schema.
//
// The startup drive walk deliberately skips unparsable entries so the
// engine always comes up; this package is the complementary diagnostic
// surface that reports exactly which blobs would be skipped and why.
package schema

import (
	_ "embed"
	"fmt"
	"path"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/billfold/billfold/internal/blob"
)

//go:embed invoice.cue
var schemaCUE string

// Validator checks document blobs against the invoice schema.
type Validator struct {
	schema cue.Value
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(schemaCUE)
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile invoice schema: %w", err)
	}
	schema := v.LookupPath(cue.ParsePath("#Invoice"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("lookup #Invoice: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// ValidateDocument checks one serialized document against the schema.
func (v *Validator) ValidateDocument(data []byte) error {
	return cuejson.Validate(data, v.schema)
}

// Problem describes one stored document that fails validation.
type Problem struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// CheckDrive walks the two-level drive hierarchy the same way the
// startup index seed does and validates every document.json found.
// Returns one Problem per failing document; an empty slice means the
// drive is clean.
func (v *Validator) CheckDrive(store blob.Store) ([]Problem, error) {
	var problems []Problem

	dates, err := store.List("")
	if err != nil {
		return nil, fmt.Errorf("list drive root: %w", err)
	}
	for _, date := range dates {
		if !date.IsDir {
			continue
		}
		dirs, err := store.List(date.Name)
		if err != nil {
			problems = append(problems, Problem{Path: date.Name, Message: err.Error()})
			continue
		}
		for _, dir := range dirs {
			if !dir.IsDir {
				continue
			}
			p := path.Join(date.Name, dir.Name, "document.json")
			data, err := store.Read(p)
			if err != nil {
				problems = append(problems, Problem{Path: p, Message: "document.json missing"})
				continue
			}
			if err := v.ValidateDocument(data); err != nil {
				problems = append(problems, Problem{Path: p, Message: err.Error()})
			}
		}
	}
	return problems, nil
}
