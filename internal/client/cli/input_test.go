package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader { return bufio.NewReader(strings.NewReader(s)) }

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("  hello world \n"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(rdr(""), "Name?", &out)
	assert.Error(t, err)
}

func TestGetPassword(t *testing.T) {
	old := readPassword
	t.Cleanup(func() { readPassword = old })

	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }
	var out bytes.Buffer
	pw, err := GetPassword(&out)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", string(pw))
	assert.Equal(t, "Enter password: \n", out.String())

	readPassword = func(int) ([]byte, error) { return nil, errors.New("boom") }
	_, err = GetPassword(&out)
	assert.EqualError(t, err, "boom")
}

func TestGetNumbers(t *testing.T) {
	var out bytes.Buffer

	n, err := GetInt(rdr("42\n"), "Steps", 0, &out)
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	n, err = GetInt(rdr("\n"), "Steps", 7, &out)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = GetInt(rdr("many\n"), "Steps", 0, &out)
	assert.EqualError(t, err, `"many" is not a whole number`)

	f, err := GetFloat(rdr("7.25\n"), "Sleep", 0, &out)
	require.NoError(t, err)
	assert.Equal(t, 7.25, f)

	_, err = GetFloat(rdr("lots\n"), "Sleep", 0, &out)
	assert.Error(t, err)
}

func TestGetOptional(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"\n", "", false},
		{"new\n", "new", true},
		{"-\n", "", true},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got, ok, err := GetOptional(rdr(tt.input), "Notes", "old", &out)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.wantOK, ok)
		assert.Equal(t, "Notes [old]\n> ", out.String())
	}
}
