package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gget/internal/app"
)

type getOptions struct {
	OutputDir   string
	RPCEndpoint string
	CacheDir    string
	ResolveDeps bool
	Force       bool
	Concurrency int
	MaxPackages int
}

func newGetCommand() *cobra.Command {
	opts := getOptions{}
	cmd := &cobra.Command{
		Use:   "get <package>",
		Short: "Download a package and optionally its dependencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.OutputDir, "output", "o", ".", "Output directory for downloaded files")
	cmd.Flags().StringVar(&opts.RPCEndpoint, "rpc-endpoint", "", "RPC endpoint URL (default https://rpc.gno.land:443)")
	cmd.Flags().StringVar(&opts.CacheDir, "cache-dir", "", "Package cache directory")
	cmd.Flags().BoolVar(&opts.ResolveDeps, "resolve-deps", false, "Resolve and download transitive dependencies")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Refresh caches and overwrite an existing package")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 0, "Maximum parallel fetches")
	cmd.Flags().IntVar(&opts.MaxPackages, "max-packages", 0, "Safety limit on resolved packages")

	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("rpc_endpoint", cmd.Flags().Lookup("rpc-endpoint"))
	_ = viper.BindPFlag("cache_dir", cmd.Flags().Lookup("cache-dir"))
	_ = viper.BindPFlag("resolve_deps", cmd.Flags().Lookup("resolve-deps"))
	_ = viper.BindPFlag("force", cmd.Flags().Lookup("force"))
	_ = viper.BindPFlag("concurrency", cmd.Flags().Lookup("concurrency"))
	_ = viper.BindPFlag("max_packages", cmd.Flags().Lookup("max-packages"))

	return cmd
}

func runGet(cmd *cobra.Command, pkg string, opts getOptions) error {
	service := app.NewService(resolveString(cmd, opts.CacheDir, "cache_dir", "cache-dir"))
	result, err := service.Download(cmd.Context(), app.DownloadRequest{
		Package:     pkg,
		OutputDir:   resolveString(cmd, opts.OutputDir, "output", "output"),
		RPCEndpoint: resolveString(cmd, opts.RPCEndpoint, "rpc_endpoint", "rpc-endpoint"),
		ResolveDeps: resolveBool(cmd, opts.ResolveDeps, "resolve_deps", "resolve-deps"),
		Force:       resolveBool(cmd, opts.Force, "force", "force"),
		Concurrency: resolveInt(cmd, opts.Concurrency, "concurrency", "concurrency"),
		MaxPackages: resolveInt(cmd, opts.MaxPackages, "max_packages", "max-packages"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("downloaded: %s (%d packages, %d files", result.Root, len(result.Packages), len(result.FilesWritten))
	if len(result.Failed) > 0 {
		fmt.Printf(", %d failed writes", len(result.Failed))
	}
	fmt.Println(")")
	return nil
}
