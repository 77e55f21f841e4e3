package app

import "gget/internal/types"

type DownloadRequest struct {
	Package     string
	OutputDir   string
	RPCEndpoint string
	ResolveDeps bool
	Force       bool
	Concurrency int
	MaxPackages int
}

type DownloadResult struct {
	Root         types.PackagePath
	Packages     []types.PackagePath
	FilesWritten []string
	Failed       []types.WriteFailure
	Warnings     []types.Warning
}

type ValidateRequest struct {
	Dir string
}

type ValidateResult struct {
	SourceFiles int
}
