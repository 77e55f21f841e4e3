package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gget/internal/app"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <dir>",
		Short: "Check that downloaded Gno sources parse",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service := app.NewService("")
			result, err := service.Validate(cmd.Context(), app.ValidateRequest{Dir: args[0]})
			if err != nil {
				return err
			}
			fmt.Printf("validated: %d source files\n", result.SourceFiles)
			return nil
		},
	}
	return cmd
}
