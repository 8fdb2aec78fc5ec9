package mkiso_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/LINBIT/mkiso/internal/mkiso"
)

func TestBundledAdapterArgs(t *testing.T) {
	testcases := []struct {
		name     string
		factory  mkiso.Factory
		apply    func(a mkiso.Adapter)
		command  string
		expected []string
	}{
		{
			name:     "hdiutil-baseline",
			factory:  mkiso.Hdiutil,
			apply:    func(a mkiso.Adapter) {},
			command:  "hdiutil",
			expected: []string{"makehybrid", "-iso", "-joliet"},
		},
		{
			name:    "hdiutil-all-options",
			factory: mkiso.Hdiutil,
			apply: func(a mkiso.Adapter) {
				a.Label("VOL")
				a.Publisher("ACME")
				a.Verbose()
				a.Output("/tmp/out.iso")
			},
			command: "hdiutil",
			expected: []string{
				"makehybrid", "-iso", "-joliet",
				"-default-volume-name", "VOL",
				"-publisher", "ACME",
				"-verbose",
				"-o", "/tmp/out.iso",
			},
		},
		{
			name:    "mkisofs-label-output",
			factory: mkiso.Mkisofs,
			apply: func(a mkiso.Adapter) {
				a.Label("L")
				a.Output("x.iso")
			},
			command:  "mkisofs",
			expected: []string{"-l", "-J", "-R", "-V", "L", "-o", "x.iso"},
		},
		{
			name:    "mkisofs-repeated-label-appends",
			factory: mkiso.Mkisofs,
			apply: func(a mkiso.Adapter) {
				a.Label("A")
				a.Label("B")
			},
			command:  "mkisofs",
			expected: []string{"-l", "-J", "-R", "-V", "A", "-V", "B"},
		},
		{
			name:    "genisoimage-publisher-verbose",
			factory: mkiso.Genisoimage,
			apply: func(a mkiso.Adapter) {
				a.Publisher("P")
				a.Verbose()
			},
			command:  "genisoimage",
			expected: []string{"-l", "-J", "-R", "-P", "P", "-v"},
		},
		{
			name:     "xorrisofs-output",
			factory:  mkiso.Xorrisofs,
			apply:    func(a mkiso.Adapter) { a.Output("o.iso") },
			command:  "xorrisofs",
			expected: []string{"-l", "-J", "-R", "-o", "o.iso"},
		},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			a := tc.factory()
			tc.apply(a)
			assert.Equal(t, tc.command, a.Command())
			assert.Equal(t, tc.expected, a.Args())
		})
	}
}

func TestFactoryReturnsFreshAdapters(t *testing.T) {
	a := mkiso.Mkisofs()
	b := mkiso.Mkisofs()

	a.Label("only-a")

	assert.Equal(t, []string{"-l", "-J", "-R", "-V", "only-a"}, a.Args())
	assert.Equal(t, []string{"-l", "-J", "-R"}, b.Args())
}
