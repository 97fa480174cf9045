package formula

import (
	"strconv"
	"strings"
)

// Kind tags a stored formula token.
type Kind int

const (
	KindOther Kind = iota
	KindOperator
	KindNumber
	KindString
	KindValue
	KindSelect
	KindCalculated
	KindTable
	KindFormula
	KindMarker
	KindFunction
)

//nolint:gochecknoglobals
var kindNames = [...]string{
	KindOther:      "other",
	KindOperator:   "operator",
	KindNumber:     "number",
	KindString:     "string",
	KindValue:      "value",
	KindSelect:     "select",
	KindCalculated: "calculated",
	KindTable:      "table",
	KindFormula:    "formula",
	KindMarker:     "marker",
	KindFunction:   "function",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// MarshalText encodes k by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// IsReference reports whether tokens of kind k stand for a value supplied at
// evaluation time and are therefore replaced by a role placeholder.
func (k Kind) IsReference() bool {
	switch k {
	case KindValue, KindSelect, KindCalculated, KindTable, KindFormula, KindMarker:
		return true
	}

	return false
}

// Token is a classified formula token.
//
// ID, Sub and Suffix carry the payload of reference kinds; Text holds the
// canonical form of everything else (operator symbol, number literal,
// unquoted string contents, upper-cased function name).
type Token struct {
	Raw    string `json:"raw"`
	Kind   Kind   `json:"kind"`
	ID     string `json:"id,omitempty"`
	Sub    string `json:"sub,omitempty"`
	Suffix string `json:"suffix,omitempty"`
	Text   string `json:"text,omitempty"`
}

// Reference returns the canonical reference string of t, or "" if t is not a
// reference.
func (t Token) Reference() string {
	switch t.Kind {
	case KindValue:
		return "@value." + t.ID
	case KindSelect:
		if t.Sub != "" {
			return "@select." + t.ID + "." + t.Sub
		}

		return "@select." + t.ID
	case KindCalculated:
		if t.Suffix != "" {
			return "@calculated." + t.ID + "-" + t.Suffix
		}

		return "@calculated." + t.ID
	case KindTable:
		return "@table." + t.ID
	case KindFormula:
		return formulaPrefix + t.ID
	case KindMarker:
		return "#" + t.ID
	}

	return ""
}

// Render returns the expression text t contributes to a normalized
// expression. References render as their canonical reference string.
func (t Token) Render() string {
	switch t.Kind {
	case KindString:
		return strconv.Quote(t.Text)
	case KindFunction:
		return t.Text + "("
	case KindOperator, KindNumber, KindOther:
		return t.Text
	}

	return t.Reference()
}

// Owns reports whether t is exactly the value or calculated reference of
// the node identified by owner.
func (t Token) Owns(owner string) bool {
	if owner == "" {
		return false
	}

	ref := t.Reference()

	return ref == "@value."+owner || ref == "@calculated."+owner
}

func (t Token) String() string {
	if ref := t.Reference(); ref != "" {
		return t.Kind.String() + "(" + ref + ")"
	}

	return t.Kind.String() + "(" + strings.TrimSpace(t.Render()) + ")"
}
