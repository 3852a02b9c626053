package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func cleanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove everything in the workspace, including saved review progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := a.ws.Clear()
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d workspace entries.\n", removed)
			return nil
		},
	}
}
