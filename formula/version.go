package formula

import (
	"encoding/hex"
	"encoding/json"

	"github.com/zeebo/blake3"
)

// versionState is the snapshot hashed into the logic version. Field order is
// part of the hash input.
type versionState struct {
	Evaluations      int64 `json:"evaluations"`
	ParseErrors      int64 `json:"parseErrors"`
	DivisionByZero   int64 `json:"divisionByZero"`
	UnknownVariables int64 `json:"unknownVariables"`
	Cache            struct {
		Entries    int64 `json:"entries"`
		ParseCount int64 `json:"parseCount"`
	} `json:"cache"`
}

// LogicVersion hashes the counters and cache statistics into 8 hex digits.
// Any change of the inputs changes the version with overwhelming probability.
func LogicVersion(m MetricsSnapshot, c CacheStats) string {
	var s versionState

	s.Evaluations = m.Evaluations
	s.ParseErrors = m.ParseErrors
	s.DivisionByZero = m.DivisionByZero
	s.UnknownVariables = m.UnknownVariables
	s.Cache.Entries = c.Entries
	s.Cache.ParseCount = c.ParseCount

	// Marshaling a struct of integers cannot fail.
	data, _ := json.Marshal(s)
	sum := blake3.Sum256(data)

	return hex.EncodeToString(sum[:4])
}
