package ast

import (
	"github.com/jsccast/yaml"
	"github.com/mitchellh/hashstructure"
	"github.com/pkg/errors"
)

// ParseDocument reads a Program written as a YAML (or JSON) document.
func ParseDocument(bs []byte) (*Program, error) {
	var p Program
	if err := yaml.Unmarshal(bs, &p); err != nil {
		return nil, errors.Wrap(err, "program document")
	}
	for i, r := range p.Rules {
		if r == nil || r.Name == "" {
			return nil, errors.Errorf("program document: rule %d has no name", i)
		}
	}
	return &p, nil
}

// Document renders the Program as YAML.
func (p *Program) Document() ([]byte, error) {
	return yaml.Marshal(p)
}

// Fingerprint hashes the structure of the Program.  Source positions
// and the program name are ignored, so reformatting a source file
// does not change its fingerprint.
func (p *Program) Fingerprint() (uint64, error) {
	return hashstructure.Hash(p, nil)
}
