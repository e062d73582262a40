package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPostpixLines(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "all three present",
			raw:  "thinking...\n  SUMMARY: added cart\nnoise\nRESULT: answer=ok\nREPORT: cart.go\nSUMMARY: second\n",
			want: "SUMMARY: added cart\nRESULT: answer=ok\nREPORT: cart.go",
		},
		{
			name: "missing report keeps raw",
			raw:  "\nSUMMARY: a\nRESULT: b\n",
			want: "SUMMARY: a\nRESULT: b",
		},
		{
			name: "no markers",
			raw:  "  plain  ",
			want: "plain",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPostpixLines(tt.raw))
		})
	}
}

func TestExtractResultValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"answer wins", "RESULT: other\nsome answer= 42 \n", "42"},
		{"empty answer skipped", "x answer=\nRESULT: fallback\n", "fallback"},
		{"result prefix", "SUMMARY: s\nRESULT:  done \n", "done"},
		{"joined lines", "line one\nline two\n", "line one / line two"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractResultValue(tt.raw))
		})
	}
}
