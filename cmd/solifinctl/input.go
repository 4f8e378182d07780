package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"solifin/internal/attachment"
	"solifin/internal/schema"
	"solifin/internal/submission"
)

// publicationFile is the YAML document accepted by publish and edit:
//
//	values:
//	  titre: Sac de riz
//	  phone: "+225 701234567"
//	  conditions_livraison: [Abidjan, Bouaké]
//	files:
//	  image: ./riz.png
//	remove: [video]
type publicationFile struct {
	Values map[string]yaml.Node `yaml:"values"`
	Files  map[string]string    `yaml:"files"`
	Remove []string             `yaml:"remove"`

	dir string
}

func readPublicationFile(path string) (*publicationFile, error) {
	var r io.Reader = os.Stdin
	dir := "."
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r, dir = f, filepath.Dir(path)
	}
	return decodePublicationFile(r, dir)
}

func decodePublicationFile(r io.Reader, dir string) (*publicationFile, error) {
	var pf publicationFile
	if err := yaml.NewDecoder(r).Decode(&pf); err != nil && err != io.EOF {
		return nil, fmt.Errorf("invalid publication file: %w", err)
	}
	pf.dir = dir
	return &pf, nil
}

// fieldValue converts a YAML node to the form value of f. Scalars keep
// their source text, so 0701234567 is not read as an octal number.
func fieldValue(f schema.FieldSpec, n *yaml.Node) (any, error) {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil, nil
	}
	switch f.Kind {
	case schema.KindList:
		if n.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("%s: expected a list", f.Name)
		}
		out := make([]string, 0, len(n.Content))
		for _, it := range n.Content {
			if it.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%s: list entries must be scalars", f.Name)
			}
			out = append(out, it.Value)
		}
		return out, nil
	case schema.KindPhone:
		switch n.Kind {
		case yaml.ScalarNode:
			p, err := schema.ParsePhone(n.Value)
			if err != nil {
				return nil, fmt.Errorf("%s: expected \"+CODE NUMBER\": %w", f.Name, err)
			}
			return p, nil
		case yaml.MappingNode:
			return phoneValue(f, n)
		}
		return nil, fmt.Errorf("%s: unsupported phone value", f.Name)
	}
	if n.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("%s: expected a single value", f.Name)
	}
	return n.Value, nil
}

func phoneValue(f schema.FieldSpec, n *yaml.Node) (schema.Phone, error) {
	var p schema.Phone
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return p, fmt.Errorf("%s.%s: expected a single value", f.Name, k.Value)
		}
		switch k.Value {
		case "country_code":
			p.CountryCode = v.Value
		case "number":
			p.Number = v.Value
		default:
			return p, fmt.Errorf("%s: unknown key %q", f.Name, k.Value)
		}
	}
	return p, nil
}

func loadFile(path string) (*attachment.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &attachment.File{Name: filepath.Base(path), Data: data}, nil
}

// apply copies the document into the session. Slot errors are collected so
// that all of them are reported at once.
func (pf *publicationFile) apply(s *submission.Session, sc schema.Schema) error {
	names := make([]string, 0, len(pf.Values))
	for name := range pf.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f, ok := sc.Field(name)
		if !ok {
			return fmt.Errorf("unknown field %q", name)
		}
		node := pf.Values[name]
		v, err := fieldValue(f, &node)
		if err != nil {
			return err
		}
		if err := s.Set(name, v); err != nil {
			return err
		}
	}
	for _, slot := range pf.Remove {
		if err := s.RemoveFile(slot); err != nil {
			return err
		}
	}
	slots := make([]string, 0, len(pf.Files))
	for slot := range pf.Files {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	for _, slot := range slots {
		if f, ok := sc.Field(slot); !ok || f.Kind != schema.KindFile {
			return fmt.Errorf("unknown attachment slot %q", slot)
		}
		path := pf.Files[slot]
		if !filepath.IsAbs(path) {
			path = filepath.Join(pf.dir, path)
		}
		file, err := loadFile(path)
		if err != nil {
			return fmt.Errorf("%s: %w", slot, err)
		}
		// Constraint errors stay on the slot and surface from Submit.
		_ = s.SelectFile(slot, file)
	}
	return nil
}
