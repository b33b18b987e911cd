package main

import (
	"fmt"
	"io"
	"os"

	"github.com/andrew-torda/atomflow/pkg/common"
	"github.com/andrew-torda/atomflow/pkg/config"
	"github.com/andrew-torda/atomflow/pkg/format"
	"github.com/andrew-torda/atomflow/pkg/formats"
	"github.com/andrew-torda/atomflow/pkg/logger"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

var errUsage = errors.New("usage")

// app is what every command shares once the configuration is loaded.
type app struct {
	cfgPath string
	cfg     *config.Config
	reg     *format.Registry
}

// usageArgs marks argument count errors so they get their own exit code.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return errors.Mark(err, errUsage)
		}
		return nil
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "atomflow",
		Short:         "Convert, regroup and filter atoms in structure and sequence files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgPath)
			if err != nil {
				return err
			}
			if err := logger.Initialize(cfg.Log); err != nil {
				return err
			}
			a.cfg = cfg
			a.reg = formats.New(cfg)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "TOML configuration file")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Mark(err, errUsage)
	})
	root.AddCommand(newConvertCmd(a), newCifCmd(a), newStatCmd(a))
	return root
}

// mymain runs a command and turns the result into an exit code.
func mymain(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	logger.Sync()
	if err == nil {
		return common.ExitSuccess
	}
	fmt.Fprintln(stderr, "atomflow:", err)
	if h := errors.FlattenHints(err); h != "" {
		fmt.Fprintln(stderr, h)
	}
	if errors.Is(err, errUsage) {
		fmt.Fprintln(stderr, root.UsageString())
		return common.ExitUsageError
	}
	return common.ExitFailure
}

func main() {
	os.Exit(mymain(os.Args[1:], os.Stdout, os.Stderr))
}
