package types

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/require"
)

func TestParsePackagePathNormalizes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want PackagePath
	}{
		{name: "plain", raw: "gno.land/p/demo/avl", want: "gno.land/p/demo/avl"},
		{name: "surrounding whitespace", raw: "  gno.land/p/demo/avl\n", want: "gno.land/p/demo/avl"},
		{name: "leading and trailing slashes", raw: "/gno.land/p/demo/avl/", want: "gno.land/p/demo/avl"},
		{name: "collapsed empty segments", raw: "gno.land//p/demo///avl", want: "gno.land/p/demo/avl"},
		{name: "dot segments dropped", raw: "gno.land/./p/demo/avl", want: "gno.land/p/demo/avl"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParsePackagePath(tc.raw)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)

			// stable under repeated parsing
			again, err := ParsePackagePath(got.String())
			require.NoError(t, err)
			require.Equal(t, got, again)
		})
	}
}

func TestParsePackagePathRejects(t *testing.T) {
	for _, raw := range []string{"", "   ", "///", "gno.land/../etc/passwd", ".."} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParsePackagePath(raw)
			require.Error(t, err)
			require.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
		})
	}
}

func TestFilePath(t *testing.T) {
	pkg := PackagePath("gno.land/p/demo/avl")
	require.Equal(t, "gno.land/p/demo/avl/node.gno", pkg.FilePath("node.gno"))
}
