// Command dtfabric-validate loads a definitions file and compiles
// every top-level definition in it, reporting any FormatError and
// exiting 1 if compilation failed (§4.L, §6.4).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/libyal/dtfabric-go/compiler"
	"github.com/libyal/dtfabric-go/reader"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dtfabric-validate",
		Short: "Validate a dtFabric definitions file",
	}
	cmd.AddCommand(newValidateCommand())
	return cmd
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <path>",
		Short: "Parse and compile every definition in path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0])
		},
	}
}

func runValidate(cmd *cobra.Command, path string) error {
	out := cmd.OutOrStdout()

	tree, err := reader.ReadFile(path)
	if err != nil {
		fmt.Fprintln(out, err)
		return err
	}

	c := compiler.New(tree)
	maps, err := c.CompileAll()
	if err != nil {
		fmt.Fprintln(out, err)
		return err
	}

	fmt.Fprintf(out, "%s: %d definitions compiled\n", path, len(maps))
	return nil
}
