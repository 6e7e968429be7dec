package main

import "testing"

func TestParseControlLine(t *testing.T) {
	cases := []struct {
		line           string
		cmd, token, arg string
		wantErr        bool
	}{
		{line: "ACTIVATE tok123", cmd: "ACTIVATE", token: "tok123"},
		{line: "  resolve tok123  ", cmd: "RESOLVE", token: "tok123"},
		{line: "RELOAD tok123", cmd: "RELOAD", token: "tok123"},
		{line: "OPEN tok123 /tmp/projects", cmd: "OPEN", token: "tok123", arg: "/tmp/projects"},
		{line: "OPEN tok123 /tmp/my projects", cmd: "OPEN", token: "tok123", arg: "/tmp/my projects"},
		{line: "BOGUS tok123", cmd: "BOGUS", token: "tok123"},
		{line: "", wantErr: true},
		{line: "ACTIVATE", wantErr: true},
		{line: "OPEN tok123", wantErr: true},
		{line: "ACTIVATE tok123 extra", wantErr: true},
	}

	for _, tc := range cases {
		cmd, token, arg, err := parseControlLine(tc.line)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("parseControlLine(%q): expected error, got %q %q %q", tc.line, cmd, token, arg)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseControlLine(%q): %v", tc.line, err)
		}
		if cmd != tc.cmd || token != tc.token || arg != tc.arg {
			t.Fatalf("parseControlLine(%q) = %q %q %q, want %q %q %q",
				tc.line, cmd, token, arg, tc.cmd, tc.token, tc.arg)
		}
	}
}
