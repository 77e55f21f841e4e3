package ports

// ImportParserPort extracts import path literals from one source file. The
// parser only understands the import-declaration syntax, not semantics.
type ImportParserPort interface {
	ParseImports(src []byte) ([]string, error)
}
