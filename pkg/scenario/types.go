package scenario

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/settle/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Op kinds.
const (
	OpSet    = "set"
	OpDelete = "delete"
	OpAppend = "append"
	OpDefine = "define"
)

// Document is a parsed scenario file.
type Document struct {
	Name        string         `yaml:"name" json:"name"`
	Initial     map[string]any `yaml:"initial" json:"initial"`
	Subscribers []Subscriber   `yaml:"subscribers" json:"subscribers"`
	Steps       []Step         `yaml:"steps" json:"steps"`
}

// Subscriber registers one listener. Watch lists the paths reported when the
// listener is notified; Reactions are applied, as a nested update, whenever
// their When path changed.
type Subscriber struct {
	Name      string     `yaml:"name" json:"name"`
	Watch     []Path     `yaml:"watch" json:"watch"`
	Reactions []Reaction `yaml:"reactions" json:"reactions"`
}

// Reaction is a conditional list of ops run from inside a listener.
// An empty When matches any change.
type Reaction struct {
	When Path `yaml:"when" json:"when"`
	Ops  []Op `yaml:"ops" json:"ops"`
}

// Step is one outermost update.
type Step struct {
	Name string `yaml:"name" json:"name"`
	Ops  []Op   `yaml:"ops" json:"ops"`
}

// Op is a single write.
//
// For set and define, From names an existing container to store by
// reference instead of Value. Writable only applies to define, where it
// defaults to false.
type Op struct {
	Op       string `yaml:"op" json:"op"`
	Path     Path   `yaml:"path" json:"path"`
	Value    any    `yaml:"value,omitempty" json:"value,omitempty"`
	From     Path   `yaml:"from,omitempty" json:"from,omitempty"`
	Writable bool   `yaml:"writable,omitempty" json:"writable,omitempty"`
}

func (o Op) String() string {
	return fmt.Sprintf("%s %s", o.Op, o.Path)
}

// Path is a domain.Path that decodes from either "a.b.c" or [a, b, c].
type Path domain.Path

// ParsePath splits a dotted path. "" and "." denote the root.
func ParsePath(s string) Path {
	if s == "" || s == "." {
		return Path{}
	}
	return Path(strings.Split(s, "."))
}

func (p Path) String() string {
	return domain.Path(p).String()
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Path) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*p = ParsePath(value.Value)
		return nil
	case yaml.SequenceNode:
		var keys []string
		if err := value.Decode(&keys); err != nil {
			return fmt.Errorf("path: %w", err)
		}
		*p = Path(keys)
		return nil
	}
	return fmt.Errorf("line %d: path must be a string or a list of keys", value.Line)
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Path) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = ParsePath(s)
		return nil
	}
	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return fmt.Errorf("path must be a string or a list of keys: %w", err)
	}
	*p = Path(keys)
	return nil
}
