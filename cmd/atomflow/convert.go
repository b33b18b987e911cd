package main

import (
	"fmt"
	"strings"

	"github.com/andrew-torda/atomflow/pkg/atomiter"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

type convertFlags struct {
	groupBy string
	filter  []string
	exclude []string
	sortBy  string
	collect bool
	pathFmt []string
}

// parseMatch splits "key=v1,v2".
func parseMatch(s string) (string, []string, error) {
	k, v, ok := strings.Cut(s, "=")
	if !ok || k == "" {
		return "", nil, errors.Mark(errors.Newf("%q is not key=value,...", s), errUsage)
	}
	return k, strings.Split(v, ","), nil
}

// pipeline puts the stages after it in the documented order.
func (f *convertFlags) pipeline(it *atomiter.Iterator) (*atomiter.Iterator, error) {
	if f.sortBy != "" {
		it = it.Sort(f.sortBy)
	}
	if f.groupBy != "" {
		it = it.GroupBy(f.groupBy)
	}
	stages := []struct {
		specs []string
		match func(...string) atomiter.Match
	}{
		{f.filter, atomiter.AnyOf},
		{f.exclude, atomiter.NoneOf},
	}
	for _, st := range stages {
		for _, s := range st.specs {
			k, vals, err := parseMatch(s)
			if err != nil {
				return nil, err
			}
			if it, err = it.Filter(k, st.match(vals...)); err != nil {
				return nil, err
			}
		}
	}
	if f.collect {
		it = it.Collect()
	}
	return it, nil
}

func newConvertCmd(a *app) *cobra.Command {
	var f convertFlags
	cmd := &cobra.Command{
		Use:   "convert IN OUT",
		Short: "Read atoms from IN and write them to OUT",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := atomiter.ReadWith(a.reg, args[0])
			if err != nil {
				return err
			}
			if it, err = f.pipeline(it); err != nil {
				return err
			}
			files, errs := it.Write(args[1], f.pathFmt...)
			for _, name := range files {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			for _, err := range errs {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
			}
			if len(errs) > 0 {
				return errors.Newf("%d of %d outputs failed", len(errs), len(errs)+len(files))
			}
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.groupBy, "group-by", "", "join neighbouring atoms with the same value of this property")
	fl.StringArrayVar(&f.filter, "filter", nil, "key=v1,v2: keep groups with a member having one of the values")
	fl.StringArrayVar(&f.exclude, "exclude", nil, "key=v1,v2: drop groups with a member having one of the values")
	fl.StringVar(&f.sortBy, "sort", "", "sort all atoms by this property")
	fl.BoolVar(&f.collect, "collect", false, "write everything to one file")
	fl.StringSliceVar(&f.pathFmt, "path-fmt", nil, "properties to put in the {} of OUT")
	return cmd
}
