// Package schema generates a JSON manifest describing the root parameters a
// route exposes, for editor and build tooling.
package schema

import (
	"encoding/json"
	"fmt"

	rootparams "github.com/goliatone/go-rootparams"
)

// Manifest describes the root parameters of one route.
type Manifest struct {
	Route  string        `json:"route"`
	Params []ParamSchema `json:"params"`
}

// ParamSchema describes a single root parameter.
type ParamSchema struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

// Generate builds the manifest for route from set, flagging placeholder
// names. Parameter order follows the set's declaration order.
func Generate(route string, set *rootparams.ParamSet, placeholders rootparams.PlaceholderKeys) (Manifest, error) {
	manifest := Manifest{Route: route}
	for _, key := range set.Keys() {
		value, _ := set.Get(key)
		paramType, err := typeOf(value)
		if err != nil {
			return Manifest{}, fmt.Errorf("schema: param %q: %w", key, err)
		}
		manifest.Params = append(manifest.Params, ParamSchema{
			Name:        key,
			Type:        paramType,
			Placeholder: placeholders.Has(key),
		})
	}
	return manifest, nil
}

func typeOf(value any) (string, error) {
	switch value.(type) {
	case string:
		return "string", nil
	case []string:
		return "string[]", nil
	default:
		return "", fmt.Errorf("unsupported value type %T", value)
	}
}

// ToJSON serialises the manifest.
func (m Manifest) ToJSON() ([]byte, error) {
	type alias Manifest
	return json.Marshal(alias(m))
}

// FromJSON deserialises a payload previously produced by ToJSON.
func FromJSON(payload []byte) (Manifest, error) {
	type alias Manifest
	var manifest alias
	if err := json.Unmarshal(payload, &manifest); err != nil {
		return Manifest{}, err
	}
	return Manifest(manifest), nil
}
