package formula

import (
	"strconv"
	"strings"
)

// RoleMap maps a role key to the reference string it stands for.
type RoleMap map[string]string

// Normalize classifies every stored token and renders the expression the
// compiler sees. References become {{ref_N}} placeholders, numbered in order
// of first appearance; a reference that occurs twice shares one role key.
// The returned expression is the cache key, so equal token lists always
// normalize to byte-identical strings.
func Normalize(tokens []string) (string, RoleMap) {
	roles := RoleMap{}
	keys := map[string]string{}
	parts := make([]string, 0, len(tokens))

	for _, raw := range tokens {
		t := Classify(raw)

		if !t.Kind.IsReference() {
			if r := t.Render(); r != "" {
				parts = append(parts, r)
			}

			continue
		}

		ref := t.Reference()

		key, ok := keys[ref]
		if !ok {
			key = "ref_" + strconv.Itoa(len(keys)+1)
			keys[ref] = key
			roles[key] = ref
		}

		parts = append(parts, "{{"+key+"}}")
	}

	return strings.Join(parts, " "), roles
}

// Tokens classifies each raw token.
func Tokens(raw []string) []Token {
	out := make([]Token, len(raw))
	for i, r := range raw {
		out[i] = Classify(r)
	}

	return out
}
