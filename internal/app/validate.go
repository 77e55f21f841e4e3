package app

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// Validate parses every Gno source file under dir and fails on the first
// file whose import syntax cannot be parsed. A directory without any Gno
// source is rejected outright.
func (s Service) Validate(ctx context.Context, req ValidateRequest) (ValidateResult, error) {
	dir := strings.TrimSpace(req.Dir)
	if dir == "" {
		return ValidateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package directory is required")
	}
	count := 0
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".gno") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to read " + path).
				WithCause(err)
		}
		if _, err := s.Parser.ParseImports(content); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("invalid source file " + path).
				WithCause(err)
		}
		count++
		return nil
	})
	if err != nil {
		return ValidateResult{}, err
	}
	if count == 0 {
		return ValidateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("no .gno files found under " + dir)
	}
	return ValidateResult{SourceFiles: count}, nil
}
