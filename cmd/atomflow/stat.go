package main

import (
	"fmt"
	"io"

	"github.com/andrew-torda/atomflow/pkg/atomiter"
	"github.com/andrew-torda/atomflow/pkg/geom"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// caBreaks counts neighbouring c alphas in one chain that are too close
// or too far apart to be bonded.
func caBreaks(g atomiter.Group) (int, error) {
	var prev geom.Xyz
	prevChain, havePrev := "", false
	n := 0
	for _, a := range g {
		if name, _ := a.Text("name"); name != "CA" {
			continue
		}
		x, err := geom.Of(a)
		if err != nil {
			return 0, err
		}
		chain, _ := a.Text("chain")
		if havePrev && chain == prevChain {
			if _, err := geom.CADist(prev, x); err != nil {
				n++
			}
		}
		prev, prevChain, havePrev = x, chain, true
	}
	return n, nil
}

func statLine(w io.Writer, label string, g atomiter.Group) error {
	m, err := geom.Coords(g)
	if err != nil {
		return errors.Wrapf(err, "group %s", label)
	}
	c, err := geom.Centroid(m)
	if err != nil {
		return err
	}
	rg, err := geom.Rgyr(m)
	if err != nil {
		return err
	}
	nbreak, err := caBreaks(g)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s %d %.3f %.3f %.3f %.3f %d\n", label, len(g), c.X, c.Y, c.Z, rg, nbreak)
	return err
}

func newStatCmd(a *app) *cobra.Command {
	var groupBy string
	cmd := &cobra.Command{
		Use:   "stat IN",
		Short: "Print atom count, centroid, radius of gyration and chain breaks",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := atomiter.ReadWith(a.reg, args[0])
			if err != nil {
				return err
			}
			if groupBy != "" {
				it = it.GroupBy(groupBy)
			} else {
				it = it.Collect()
			}
			fmt.Fprintln(cmd.OutOrStdout(), "# group atoms x y z rgyr breaks")
			for {
				g, err := it.Next()
				if errors.Is(err, atomiter.Done) {
					return nil
				}
				if err != nil {
					return err
				}
				label := "all"
				if groupBy != "" {
					label, _ = g[0].Text(groupBy)
				}
				if err := statLine(cmd.OutOrStdout(), label, g); err != nil {
					return err
				}
			}
		},
	}
	cmd.Flags().StringVar(&groupBy, "group-by", "", "one line for each group of this property")
	return cmd
}
