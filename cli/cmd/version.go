package cmd

import (
	"context"
	"fmt"

	"github.com/ardnew/formulate/pkg"
)

// Version prints the program and logic versions.
type Version struct {
	Output string `default:"text" enum:"text,json,yaml" help:"Output format." short:"o"`
}

type versionInfo struct {
	Program string `json:"program"`
	Logic   string `json:"logicVersion"`
}

// Run executes the version command.
func (v *Version) Run(_ context.Context, env *Env) error {
	info := versionInfo{Program: pkg.Version(), Logic: env.Engine.Version()}

	if v.Output != formatText {
		return encode(env.Stdout, v.Output, info)
	}

	_, err := fmt.Fprintf(env.Stdout, "%s %s (logic %s)\n", pkg.Name, info.Program, info.Logic)

	return err
}
