// SPDX-License-Identifier: MPL-2.0

package buildscript

import (
	"errors"
	"testing"
)

func TestParseCfg(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    CfgOption
		wantErr bool
	}{
		{in: "unix", want: CfgOption{Name: "unix"}},
		{in: `target_os="linux"`, want: CfgOption{Name: "target_os", Value: "linux", HasValue: true}},
		{in: `feature=""`, want: CfgOption{Name: "feature", HasValue: true}},
		{in: `foo="a"b`, wantErr: true},
		{in: `="x"`, wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseCfg(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCfg(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil {
			if !errors.Is(err, ErrInvalidCfg) {
				t.Errorf("ParseCfg(%q) error does not wrap ErrInvalidCfg: %v", tt.in, err)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCfg(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestCfgSetEnv(t *testing.T) {
	t.Parallel()

	set := CfgSet{}
	for _, c := range []string{`foo="b"`, "unix", `foo="a"`, "foo", `foo="b"`} {
		opt, err := ParseCfg(c)
		if err != nil {
			t.Fatal(err)
		}
		set.Add(opt)
	}
	env := set.Env()
	if env["CARGO_CFG_FOO"] != "a,b" {
		t.Errorf("CARGO_CFG_FOO = %q, want %q", env["CARGO_CFG_FOO"], "a,b")
	}
	if v, ok := env["CARGO_CFG_UNIX"]; !ok || v != "" {
		t.Errorf("CARGO_CFG_UNIX = %q (set %v), want empty", v, ok)
	}
}

func TestParseCfgList(t *testing.T) {
	t.Parallel()

	opts, err := ParseCfgList("debug_assertions\n\ntarget_arch=\"x86_64\"\ntarget_feature=\"sse2\"\n")
	if err != nil {
		t.Fatalf("ParseCfgList() error: %v", err)
	}
	if len(opts) != 3 || opts[1].Name != "target_arch" || opts[1].Value != "x86_64" {
		t.Errorf("ParseCfgList() = %+v", opts)
	}
}
