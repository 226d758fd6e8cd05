package utils

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRawAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain integer", input: "5000000000", want: "5000000000"},
		{name: "huge amount", input: "123456789012345678901234567890", want: "123456789012345678901234567890"},
		{name: "zero", input: "0", want: "0"},
		{name: "empty means zero", input: "", want: "0"},
		{name: "null means zero", input: "null", want: "0"},
		{name: "negative passes through", input: "-42", want: "-42"},
		{name: "garbage", input: "12abc", wantErr: true},
		{name: "decimal point", input: "1.5", wantErr: true},
		{name: "hex not accepted", input: "0xff", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRawAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestNormalizeRawAmount(t *testing.T) {
	weth, ok := new(big.Int).SetString("1500000000000000000", 10)
	require.True(t, ok)

	assert.Equal(t, "1.5", NormalizeRawAmount(weth, 18).String())
	assert.Equal(t, "5000", NormalizeRawAmount(big.NewInt(5000000000), 6).String())
	assert.Equal(t, "7", NormalizeRawAmount(big.NewInt(7), 0).String())
	assert.True(t, NormalizeRawAmount(nil, 18).IsZero())
}
