package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"
)

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want config
	}{
		{
			name: "empty",
			doc:  "",
			want: config{},
		},
		{
			name: "flat_and_nested",
			doc: `
log-level: debug
log:
  format: json
  pretty: false
max_length: 4000
serve:
  addr: ":9090"
  report-interval: 30s
ratio: 0.5
tags: [a, 2]
`,
			want: config{
				"log-level":             "debug",
				"log-format":            "json",
				"log-pretty":            false,
				"max-length":            "4000",
				"serve-addr":            ":9090",
				"serve-report-interval": "30s",
				"ratio":                 "0.5",
				"tags":                  "a,2",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, err := loadYAML(strings.NewReader(tt.doc))
			if err != nil {
				t.Fatal(err)
			}

			if diff := cmp.Diff(tt.want, r); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadYAML_Malformed(t *testing.T) {
	t.Parallel()

	if _, err := loadYAML(strings.NewReader("log: [")); !errors.Is(err, ErrConfig) {
		t.Errorf("loadYAML error = %v, want ErrConfig", err)
	}
}

func TestConfig_Resolve(t *testing.T) {
	t.Parallel()

	var cli struct {
		Level string `default:"info"`
		Serve struct {
			Addr string `default:":8080"`
		} `cmd:""`
	}

	c := config{"level": "warn", "serve-addr": ":9090", "addr": ":1"}

	parser, err := kong.New(&cli, kong.Resolvers(c))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse([]string{"serve"}); err != nil {
		t.Fatal(err)
	}

	if cli.Level != "warn" || cli.Serve.Addr != ":9090" {
		t.Errorf("resolved level=%q addr=%q", cli.Level, cli.Serve.Addr)
	}

	if _, err := parser.Parse([]string{"--level=error", "serve", "--addr=:7"}); err != nil {
		t.Fatal(err)
	}

	if cli.Level != "error" || cli.Serve.Addr != ":7" {
		t.Errorf("flags did not override: level=%q addr=%q", cli.Level, cli.Serve.Addr)
	}
}
