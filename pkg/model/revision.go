package model

import (
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v2"
)

const urnUUIDPrefix = "urn:uuid:"

// Identifier is a bag-info identifier inherited from the dataset description
type Identifier struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Revision of a bag, produced by a conversion step
type Revision struct {
	Number          int          `json:"number" yaml:"number"`
	Group           string       `json:"group" yaml:"group"` // Name of the parent directory, referred to by the next revision
	ID              string       `json:"id" yaml:"id"`       // Name of the bag directory
	Dir             string       `json:"dir" yaml:"dir"`
	IsVersionOf     string       `json:"isversionof,omitempty" yaml:"isversionof,omitempty"`
	Created         string       `json:"created,omitempty" yaml:"created,omitempty"`
	Removed         []string     `json:"removed,omitempty" yaml:"removed,omitempty"`
	Added           []string     `json:"added,omitempty" yaml:"added,omitempty"`
	BaseIdentifiers []Identifier `json:"baseidentifiers,omitempty" yaml:"baseidentifiers,omitempty"`
}

// URN to refer to this revision from the next one
func (r Revision) URN() string {
	return VersionOfURN(r.Group)
}

// VersionOfURN is the Is-Version-Of value referring to a group
func VersionOfURN(group string) string {
	return urnUUIDPrefix + group
}

// Chain of revisions produced by one conversion
type Chain struct {
	Input     string     `json:"input" yaml:"input"`
	Mapping   string     `json:"mapping" yaml:"mapping"`
	Output    string     `json:"output" yaml:"output"`
	Revisions []Revision `json:"revisions" yaml:"revisions"`
}

// Add a revision at the end of the chain
func (c *Chain) Add(r Revision) {
	c.Revisions = append(c.Revisions, r)
}

// Dirs of the revisions, in order
func (c *Chain) Dirs() []string {
	dirs := make([]string, 0, len(c.Revisions))
	for _, r := range c.Revisions {
		dirs = append(dirs, r.Dir)
	}
	return dirs
}

// YAML report of the chain
func (c *Chain) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// JSON report of the chain
func (c *Chain) JSON() ([]byte, error) {
	return jsoniter.MarshalIndent(c, "", "  ")
}
