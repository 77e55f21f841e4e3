package adapters

import (
	"go/parser"
	"go/token"
	"strconv"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"gget/internal/ports"
)

// GnoImportParser extracts import path literals from Gno source. Gno shares
// the Go grammar, so the standard parser in ImportsOnly mode is the grammar
// engine; nothing past the import declarations is read.
type GnoImportParser struct{}

func NewGnoImportParser() GnoImportParser {
	return GnoImportParser{}
}

func (GnoImportParser) ParseImports(src []byte) ([]string, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "source.gno", src, parser.ImportsOnly)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse source imports").
			WithCause(err)
	}
	var imports []string
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		imports = append(imports, path)
	}
	return imports, nil
}

var _ ports.ImportParserPort = GnoImportParser{}
