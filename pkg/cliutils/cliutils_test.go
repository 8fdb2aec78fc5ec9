package cliutils_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/LINBIT/mkiso/pkg/cliutils"
)

type testStruct struct {
	Command   string   `arg:"command"`
	Args      []string `arg:"args,"`
	Label     []string `arg:"label,-V"`
	Verbose   bool     `arg:"verbose,false"`
	Retries   int      `arg:"retries,3"`
	YesOrNo   myBool   `arg:"yes_or_no,yes"`
	unexposed string
}

type myBool struct {
	b bool
}

func (m *myBool) UnmarshalText(text []byte) error {
	switch string(text) {
	case "yes":
		m.b = true
	case "no":
		m.b = false
	default:
		return fmt.Errorf("'yes' or 'no': %s", string(text))
	}
	return nil
}

func TestParse(t *testing.T) {
	testcases := []struct {
		name        string
		arg         string
		expected    testStruct
		expectError bool
	}{
		{
			name:        "empty is error",
			arg:         "",
			expectError: true,
		},
		{
			name: "full parse",
			arg:  "command=xorriso,args=-as mkisofs -r,label=-volid {},verbose=true,retries=-1,yes_or_no=no",
			expected: testStruct{
				Command: "xorriso",
				Args:    []string{"-as", "mkisofs", "-r"},
				Label:   []string{"-volid", "{}"},
				Verbose: true,
				Retries: -1,
				YesOrNo: myBool{false},
			},
		},
		{
			name: "defaults",
			arg:  "command=tool",
			expected: testStruct{
				Command: "tool",
				Args:    []string{},
				Label:   []string{"-V"},
				Retries: 3,
				YesOrNo: myBool{true},
			},
		},
		{
			name: "value may contain equals",
			arg:  "command=tool,label=--volid={}",
			expected: testStruct{
				Command: "tool",
				Args:    []string{},
				Label:   []string{"--volid={}"},
				Retries: 3,
				YesOrNo: myBool{true},
			},
		},
		{
			name:        "missing required",
			arg:         "args=-r",
			expectError: true,
		},
		{
			name:        "unknown key",
			arg:         "command=tool,volume=x",
			expectError: true,
		},
		{
			name:        "duplicate key",
			arg:         "command=a,command=b",
			expectError: true,
		},
		{
			name:        "missing equals",
			arg:         "command",
			expectError: true,
		},
		{
			name:        "unmarshal error propagates",
			arg:         "command=tool,yes_or_no=42",
			expectError: true,
		},
	}

	t.Parallel()
	for i := range testcases {
		c := testcases[i]
		t.Run(c.name, func(t *testing.T) {
			var actual testStruct
			err := cliutils.Parse(c.arg, &actual)
			if c.expectError {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, c.expected, actual)
		})
	}
}
