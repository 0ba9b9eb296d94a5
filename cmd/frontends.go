package cmd

import (
	"chyp8/emu/screen"

	"github.com/spf13/cobra"
)

var frontendsCmd = &cobra.Command{
	Use:   "frontends",
	Short: "list the available frontends",
	Args:  cobra.NoArgs,
	Run:   ListFrontends,
}

func ListFrontends(cmd *cobra.Command, args []string) {
	for _, name := range screen.Names() {
		cmd.Println(name)
	}
}
