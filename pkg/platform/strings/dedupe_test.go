package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, []string{}},
		{"blanks dropped", []string{" ", "", "k1:9092"}, []string{"k1:9092"}},
		{"repeats after trim", []string{"k1:9092", " k1:9092 ", "k2:9092"}, []string{"k1:9092", "k2:9092"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeAndTrim(tt.in))
		})
	}
}
