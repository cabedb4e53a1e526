package placement

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"
)

const (
	keyPosition = "position"
	tagCentered = "Centered"
	tagAt       = "At"
	keyX        = "x"
	keyY        = "y"
)

type centeredRecord struct {
	Position string `yaml:"position"`
}

type coords struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type atRecord struct {
	Position struct {
		At coords `yaml:"At"`
	} `yaml:"position"`
}

// Marshal encodes p as a YAML document.
func Marshal(p Placement) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var doc any
	switch pos := p.Position.(type) {
	case Centered:
		doc = centeredRecord{Position: tagCentered}
	case At:
		var rec atRecord
		rec.Position.At = coords{X: pos.X, Y: pos.Y}
		doc = rec
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode placement: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode placement: %w", err)
	}
	return buf.Bytes(), nil
}

// Parse decodes a YAML document produced by Marshal. Parsing is strict:
// anything other than a single document with exactly one well-formed
// position field is rejected.
func Parse(data []byte) (Placement, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Placement{}, errors.New("empty document")
		}
		return Placement{}, err
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return Placement{}, err
		}
		return Placement{}, errors.New("expected a single document")
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return Placement{}, errors.New("expected a single document")
	}

	fields, err := mappingFields(doc.Content[0], keyPosition)
	if err != nil {
		return Placement{}, err
	}

	pos, err := parsePosition(fields[keyPosition])
	if err != nil {
		return Placement{}, fmt.Errorf("%s: %w", keyPosition, err)
	}
	return Placement{Position: pos}, nil
}

func parsePosition(n *yaml.Node) (Position, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.ShortTag() == "!!str" && n.Value == tagCentered {
			return Centered{}, nil
		}
		return nil, fmt.Errorf("line %d: unknown variant %q", n.Line, n.Value)

	case yaml.MappingNode:
		fields, err := mappingFields(n, tagAt)
		if err != nil {
			return nil, err
		}
		xy, err := mappingFields(fields[tagAt], keyX, keyY)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tagAt, err)
		}
		x, err := parseCoord(xy[keyX])
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", tagAt, keyX, err)
		}
		y, err := parseCoord(xy[keyY])
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", tagAt, keyY, err)
		}
		return At{X: x, Y: y}, nil

	default:
		return nil, fmt.Errorf("line %d: expected %q or an %q mapping", n.Line, tagCentered, tagAt)
	}
}

func parseCoord(n *yaml.Node) (float64, error) {
	if n.Kind != yaml.ScalarNode || (n.ShortTag() != "!!int" && n.ShortTag() != "!!float") {
		return 0, fmt.Errorf("line %d: expected a number, got %q", n.Line, n.Value)
	}
	var f float64
	if err := n.Decode(&f); err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("line %d: %w", n.Line, ErrNonFinite)
	}
	return f, nil
}

// mappingFields returns the values of a mapping node that must contain
// exactly the given keys, each once.
func mappingFields(n *yaml.Node, keys ...string) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", n.Line)
	}

	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}

	fields := make(map[string]*yaml.Node, len(keys))
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind != yaml.ScalarNode || !want[k.Value] {
			return nil, fmt.Errorf("line %d: unknown field %q", k.Line, k.Value)
		}
		if _, dup := fields[k.Value]; dup {
			return nil, fmt.Errorf("line %d: duplicate field %q", k.Line, k.Value)
		}
		fields[k.Value] = v
	}

	for _, k := range keys {
		if _, ok := fields[k]; !ok {
			return nil, fmt.Errorf("line %d: missing field %q", n.Line, k)
		}
	}
	return fields, nil
}
