package assets

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ContentValidator checks asset content and edge properties against the
// schema registered for their type. It is immutable once built.
type ContentValidator struct {
	content    map[Type]*jsonschema.Schema
	properties map[EdgeType]*jsonschema.Schema
	object     *jsonschema.Schema
}

func NewContentValidator() (*ContentValidator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020

	compile := func(url, src string) (*jsonschema.Schema, error) {
		if err := c.AddResource(url, strings.NewReader(src)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", url, err)
		}
		s, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", url, err)
		}
		return s, nil
	}

	v := &ContentValidator{
		content:    make(map[Type]*jsonschema.Schema, len(contentSchemas)),
		properties: make(map[EdgeType]*jsonschema.Schema, len(propertySchemas)),
	}
	for t, src := range contentSchemas {
		s, err := compile("mem://siteproof/content/"+string(t)+".json", src)
		if err != nil {
			return nil, err
		}
		v.content[t] = s
	}
	for e, src := range propertySchemas {
		s, err := compile("mem://siteproof/edge/"+string(e)+".json", src)
		if err != nil {
			return nil, err
		}
		v.properties[e] = s
	}
	obj, err := compile("mem://siteproof/object.json", objectSchema)
	if err != nil {
		return nil, err
	}
	v.object = obj
	return v, nil
}

// ValidateContent checks raw against the schema of t. Empty content is
// treated as an empty object.
func (v *ContentValidator) ValidateContent(t Type, raw []byte) error {
	if !t.Valid() {
		return fmt.Errorf("unknown asset type %q", t)
	}
	s := v.content[t]
	if s == nil {
		s = v.object
	}
	return validate(s, raw, "content for "+string(t))
}

func (v *ContentValidator) ValidateProperties(e EdgeType, raw []byte) error {
	if !e.Valid() {
		return fmt.Errorf("unknown edge type %q", e)
	}
	s := v.properties[e]
	if s == nil {
		s = v.object
	}
	return validate(s, raw, "properties for "+string(e))
}

func validate(s *jsonschema.Schema, raw []byte, what string) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%s: invalid json: %w", what, err)
	}
	if err := s.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return fmt.Errorf("%s: %s", what, leafMessage(ve))
		}
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

// leafMessage reports the deepest cause, which names the offending field.
func leafMessage(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return loc + ": " + ve.Message
}
