package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ardnew/formulate/pkg"
)

func TestVersionRun(t *testing.T) {
	t.Parallel()

	env, stdout, _ := testEnv(t, "")

	if err := (&Version{Output: formatText}).Run(t.Context(), env); err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(stdout.String(), pkg.Name+" ") ||
		!strings.Contains(stdout.String(), env.Engine.Version()) {
		t.Errorf("output = %q", stdout.String())
	}

	stdout.Reset()

	if err := (&Version{Output: formatJSON}).Run(t.Context(), env); err != nil {
		t.Fatal(err)
	}

	var got versionInfo
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatal(err)
	}

	if got.Logic != env.Engine.Version() || got.Program != pkg.Version() {
		t.Errorf("version = %+v", got)
	}
}
