package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCEP(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "Plain digits", input: "01310100", want: "01310100"},
		{name: "Formatted", input: "01310-100", want: "01310100"},
		{name: "With spaces", input: " 01310 100 ", want: "01310100"},
		{name: "Too short", input: "0131010", wantErr: true},
		{name: "Too long", input: "013101000", wantErr: true},
		{name: "Letters only", input: "abcdefgh", wantErr: true},
		{name: "Empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeCEP(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCEP)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatCEP(t *testing.T) {
	assert.Equal(t, "01310-100", FormatCEP("01310100"))
	// Non-normalized input passes through untouched
	assert.Equal(t, "1310100", FormatCEP("1310100"))
}

func TestGenerateOrderNumber(t *testing.T) {
	number := GenerateOrderNumber()
	assert.Len(t, number, 9)
	assert.Equal(t, "LM-", number[:3])
}
