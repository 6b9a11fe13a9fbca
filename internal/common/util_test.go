package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWipeByteArray(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
	}{
		{"nil", nil},
		{"empty", []byte{}},
		{"password", []byte("password123")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			WipeByteArray(tt.in)
			for _, b := range tt.in {
				assert.Zero(t, b)
			}
		})
	}
}
