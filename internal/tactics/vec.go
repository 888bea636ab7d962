// Package tactics is the grid-tactics domain: actors standing on a board of
// cells, and the leaf predicates that rules are built from.
//
// Predicates are evaluated with the acting *Actor as target and the
// candidate *Cell as context. Leaves only read their arguments.
package tactics

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vec2 is a grid position. X grows rightwards, Y grows downwards.
type Vec2 struct {
	X, Y int
}

func (v Vec2) String() string {
	return fmt.Sprintf("(%d,%d)", v.X, v.Y)
}

// Manhattan returns |dx| + |dy|.
func Manhattan(a, b Vec2) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// UnmarshalYAML decodes the flow form [x, y].
func (v *Vec2) UnmarshalYAML(node *yaml.Node) error {
	var xy []int
	if err := node.Decode(&xy); err != nil {
		return fmt.Errorf("line %d: position must be [x, y]: %w", node.Line, err)
	}
	if len(xy) != 2 {
		return fmt.Errorf("line %d: position must have 2 coordinates, got %d", node.Line, len(xy))
	}
	v.X, v.Y = xy[0], xy[1]
	return nil
}

// MarshalYAML encodes v as [x, y].
func (v Vec2) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, n := range []int{v.X, v.Y} {
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(n)})
	}
	return node, nil
}

// MarshalJSON encodes v as [x, y].
func (v Vec2) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{v.X, v.Y})
}

// UnmarshalJSON decodes [x, y].
func (v *Vec2) UnmarshalJSON(data []byte) error {
	var xy [2]int
	if err := json.Unmarshal(data, &xy); err != nil {
		return fmt.Errorf("position must be [x, y]: %w", err)
	}
	v.X, v.Y = xy[0], xy[1]
	return nil
}

// ParseVec2 parses "x,y" as used on the command line.
func ParseVec2(s string) (Vec2, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Vec2{}, fmt.Errorf("position %q must be x,y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Vec2{}, fmt.Errorf("position %q: bad x: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Vec2{}, fmt.Errorf("position %q: bad y: %w", s, err)
	}
	return Vec2{X: x, Y: y}, nil
}
