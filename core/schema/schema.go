// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

// Package schema validates JSON documents against JSON schemas
package schema

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/goccy/go-json"

	"github.com/xeipuuv/gojsonschema"
)

// Validator is a utility to validate JSON documents against a set of schemas, identified by their $id
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// ValidationError lists everything that is wrong with a document
type ValidationError struct {
	SchemaID string
	Issues   []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("document is not valid for schema %s: %s", e.SchemaID, strings.Join(e.Issues, "; "))
}

// NewValidatorFromFS creates a new Validator using schemas from fsys. Json files
// in dir are used as top level schemas, json files in dir/refs as references.
// A missing refs directory is fine.
func NewValidatorFromFS(fsys fs.FS, dir string) (*Validator, error) {
	readDir := func(dir string, mustExist bool) ([]string, error) {
		entries, err := fs.ReadDir(fsys, dir)
		if err != nil {
			if !mustExist {
				return nil, nil
			}
			return nil, fmt.Errorf("cannot read dir %s: %w", dir, err)
		}
		var documents []string
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
				continue
			}
			data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
			if err != nil {
				return nil, fmt.Errorf("cannot read file '%s': %w", e.Name(), err)
			}
			documents = append(documents, string(data))
		}
		return documents, nil
	}

	schemas, err := readDir(dir, true)
	if err != nil {
		return nil, err
	}
	refs, err := readDir(path.Join(dir, "refs"), false)
	if err != nil {
		return nil, err
	}
	return NewValidator(schemas, refs)
}

// NewValidator creates a new Validator. Every top level schema needs an $id and may reference
// schemas from refs, but not other top level schemas.
func NewValidator(schemas []string, refs []string) (*Validator, error) {
	v := &Validator{schemas: make(map[string]*gojsonschema.Schema)}
	for _, document := range schemas {
		var header struct {
			ID string `json:"$id"`
		}
		if err := json.Unmarshal([]byte(document), &header); err != nil {
			return nil, fmt.Errorf("parse error '%v' in schema: '%s'", err, document)
		}
		if header.ID == "" {
			return nil, fmt.Errorf("schema does not contain $id: '%s'", document)
		}

		loader := gojsonschema.NewSchemaLoader()
		for _, ref := range refs {
			if err := loader.AddSchemas(gojsonschema.NewStringLoader(ref)); err != nil {
				return nil, fmt.Errorf("cannot add ref for %s: %w", header.ID, err)
			}
		}
		compiled, err := loader.Compile(gojsonschema.NewStringLoader(document))
		if err != nil {
			return nil, fmt.Errorf("cannot compile schema %s: %w", header.ID, err)
		}
		v.schemas[header.ID] = compiled
	}
	return v, nil
}

// HasSchema returns true if schemaID is known
func (v *Validator) HasSchema(schemaID string) bool {
	_, ok := v.schemas[schemaID]
	return ok
}

// ValidateBytes validates a raw JSON document against schemaID
func (v *Validator) ValidateBytes(document []byte, schemaID string) error {
	return v.validate(gojsonschema.NewBytesLoader(document), schemaID)
}

// ValidateValue validates any Go value against schemaID, as it would be marshalled to JSON
func (v *Validator) ValidateValue(value interface{}, schemaID string) error {
	return v.validate(gojsonschema.NewGoLoader(value), schemaID)
}

func (v *Validator) validate(loader gojsonschema.JSONLoader, schemaID string) error {
	schema, ok := v.schemas[schemaID]
	if !ok {
		return fmt.Errorf("there is no schema %s", schemaID)
	}

	result, err := schema.Validate(loader)
	if err != nil {
		return fmt.Errorf("cannot validate with schema %s: %w", schemaID, err)
	}
	if result.Valid() {
		return nil
	}
	verr := &ValidationError{SchemaID: schemaID}
	for _, e := range result.Errors() {
		verr.Issues = append(verr.Issues, e.String())
	}
	return verr
}
