package main

import (
	"github.com/andrew-torda/atomflow/pkg/format/cif"
	"github.com/spf13/cobra"
)

func newCifCmd(a *app) *cobra.Command {
	var cats []string
	cmd := &cobra.Command{
		Use:   "cif IN",
		Short: "Print the CIF data in IN",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(cats) == 0 {
				cats = a.cfg.CIF.Categories
			}
			d, err := cif.ReadData(args[0], cats...)
			if err != nil {
				return err
			}
			return cif.Writer{Width: a.cfg.CIF.Width}.Write(cmd.OutOrStdout(), d)
		},
	}
	cmd.Flags().StringArrayVar(&cats, "category", nil, "keep only this category, like _atom_site")
	return cmd
}
