package model

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func TestURN(t *testing.T) {
	r := Revision{Group: "b5d3a3d4-6b2c-4cb6-9bd1-a2df0b8e4b5f"}
	assert.Equal(t, "urn:uuid:b5d3a3d4-6b2c-4cb6-9bd1-a2df0b8e4b5f", r.URN())
	assert.Equal(t, r.URN(), VersionOfURN(r.Group))
}

func TestChain(t *testing.T) {
	c := &Chain{Input: "/in/g/bag", Mapping: "/in/mapping.csv", Output: "/out"}
	assert.Empty(t, c.Dirs())

	c.Add(Revision{Number: 1, Group: "g", ID: "bag", Dir: "/out/g/bag"})
	c.Add(Revision{
		Number:          2,
		Group:           "g2",
		ID:              "id2",
		Dir:             "/out/g2/id2",
		IsVersionOf:     VersionOfURN("g"),
		Removed:         []string{"data/secret.txt"},
		BaseIdentifiers: []Identifier{{Key: "Base-DOI", Value: "10.17026/x"}},
	})
	assert.Equal(t, []string{"/out/g/bag", "/out/g2/id2"}, c.Dirs())

	b, err := c.YAML()
	require.NoError(t, err)
	var reread Chain
	require.NoError(t, yaml.Unmarshal(b, &reread))
	assert.Equal(t, *c, reread)
	assert.Contains(t, string(b), "isversionof: urn:uuid:g\n")

	b, err = c.JSON()
	require.NoError(t, err)
	reread = Chain{}
	require.NoError(t, jsoniter.Unmarshal(b, &reread))
	assert.Equal(t, *c, reread)
	assert.Contains(t, string(b), `"isversionof": "urn:uuid:g"`)
}
