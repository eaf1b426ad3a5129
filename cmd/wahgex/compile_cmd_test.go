package main

import "testing"

func TestDefaultOutputName(t *testing.T) {
	cases := map[string]string{
		"":        "pattern.wasm",
		"abc":     "abc.wasm",
		"a+b*c?":  "a_b_c_.wasm",
		`\d+`:     "_d_.wasm",
		"cat|dog": "cat_dog.wasm",
	}
	for pattern, want := range cases {
		if got := defaultOutputName(pattern); got != want {
			t.Errorf("defaultOutputName(%q) = %q, want %q", pattern, got, want)
		}
	}
}
