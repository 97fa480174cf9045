package repl

import (
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/formulate/formula"
)

// Session holds the bindings every REPL evaluation runs against.
type Session struct {
	Owner  string            `yaml:"owner"`
	Strict bool              `yaml:"strict"`
	Roles  map[string]string `yaml:"roles"`
	Values map[string]any    `yaml:"values"`
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{Roles: map[string]string{}, Values: map[string]any{}}
}

// Request binds expr to the session.
func (s *Session) Request(expr string) formula.Request {
	return formula.Request{
		Expr:   expr,
		Roles:  formula.RoleMap(maps.Clone(s.Roles)),
		Values: maps.Clone(s.Values),
		Owner:  s.Owner,
		Strict: s.Strict,
	}
}

// Set binds key to the value written as raw. See [ParseValue].
func (s *Session) Set(key, raw string) { s.Values[key] = ParseValue(raw) }

// SetRole maps role key onto reference ref.
func (s *Session) SetRole(key, ref string) { s.Roles[key] = ref }

// Unset removes key from both values and roles. It reports whether key was
// bound.
func (s *Session) Unset(key string) bool {
	_, v := s.Values[key]
	_, r := s.Roles[key]

	delete(s.Values, key)
	delete(s.Roles, key)

	return v || r
}

// Names returns the bound value and role keys, sorted.
func (s *Session) Names() []string {
	names := slices.Collect(maps.Keys(s.Values))
	for k := range s.Roles {
		if _, ok := s.Values[k]; !ok {
			names = append(names, k)
		}
	}

	slices.Sort(names)

	return names
}

// Marshal renders the session as a YAML document.
func (s *Session) Marshal() ([]byte, error) { return yaml.Marshal(s) }

// ParseSession reads a session written by [Session.Marshal].
func ParseSession(data []byte) (*Session, error) {
	s := NewSession()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, err
	}

	if s.Roles == nil {
		s.Roles = map[string]string{}
	}

	if s.Values == nil {
		s.Values = map[string]any{}
	}

	for k, v := range s.Values {
		s.Values[k] = normalize(v)
	}

	return s, nil
}

// ParseValue reads a value written on a command line or prompt. Numbers,
// booleans and flow sequences are read as YAML scalars; anything else is
// kept as text.
func ParseValue(raw string) any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil || v == nil {
		return raw
	}

	switch v.(type) {
	case map[string]any:
		return raw
	}

	return normalize(v)
}

// normalize converts decoded YAML numbers to float64.
func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}

		return out
	}

	return v
}

// Assignment splits "key=value".
func Assignment(s string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(s, "=")
	key = strings.TrimSpace(key)

	return key, strings.TrimSpace(value), ok && key != ""
}

// FormatValue renders an evaluation result for display.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case float64:
		return number(x)
	case string:
		return strconv.Quote(x)
	case []float64:
		parts := make([]string, len(x))
		for i, f := range x {
			parts[i] = number(f)
		}

		return "[" + strings.Join(parts, ", ") + "]"
	}

	return "?"
}

func number(f float64) string {
	if math.Abs(f) >= 1e21 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}
