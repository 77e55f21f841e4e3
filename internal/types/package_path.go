package types

import (
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// PackagePath is the normalized, slash-separated identifier of a remote
// package, for example "gno.land/p/demo/avl".
type PackagePath string

// ParsePackagePath normalizes a raw package path: surrounding whitespace and
// slashes are trimmed and empty segments are collapsed. Parsing an already
// parsed path returns it unchanged.
func ParsePackagePath(raw string) (PackagePath, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.Trim(trimmed, "/")
	if trimmed == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package path is empty")
	}
	segments := strings.Split(trimmed, "/")
	normalized := segments[:0]
	for _, segment := range segments {
		if segment == "" || segment == "." {
			continue
		}
		if segment == ".." {
			return "", errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("package path must not contain parent segments")
		}
		normalized = append(normalized, segment)
	}
	return PackagePath(strings.Join(normalized, "/")), nil
}

func (p PackagePath) String() string {
	return string(p)
}

// FilePath joins the package path with one of its filenames, forming the
// remote query path for that file.
func (p PackagePath) FilePath(filename string) string {
	return string(p) + "/" + filename
}
