package cli

import (
	"github.com/spf13/cobra"

	"github.com/phanxgames/arbor"
)

func newConfigCmd() *cobra.Command {
	var validate string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the default configuration, or validate a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if validate != "" {
				if _, err := arbor.LoadConfig(validate); err != nil {
					printError(out, "%v", err)
					return err
				}
				printSuccess(out, "%s is valid", validate)
				return nil
			}
			data, err := arbor.DefaultConfig().Encode()
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&validate, "validate", "", "validate a TOML configuration file")
	return cmd
}
