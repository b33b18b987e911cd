// Package formats registers every file format, in a fixed order, and
// guesses the format of input files whose names do not say.
package formats

import (
	"bufio"
	"strings"
	"sync"

	"github.com/andrew-torda/atomflow/pkg/config"
	"github.com/andrew-torda/atomflow/pkg/format"
	"github.com/andrew-torda/atomflow/pkg/format/cif"
	"github.com/andrew-torda/atomflow/pkg/format/fasta"
	"github.com/andrew-torda/atomflow/pkg/format/pdb"
	"github.com/andrew-torda/atomflow/pkg/logger"
	"github.com/andrew-torda/atomflow/pkg/zwrap"
	"github.com/cockroachdb/errors"
)

var ErrUnrecognised = errors.New("cannot recognise format")

// New builds a registry with CIF, PDB and FASTA, in that order.
func New(cfg *config.Config) *format.Registry {
	c := cif.New()
	if cfg != nil {
		c.Width = cfg.CIF.Width
	}
	return format.NewRegistry().MustRegister(c, pdb.New(), fasta.New())
}

var (
	dflt     *format.Registry
	dfltOnce sync.Once
)

// Default is the process registry, built on first use with the default
// configuration.
func Default() *format.Registry {
	dfltOnce.Do(func() { dflt = New(config.Default()) })
	return dflt
}

const maxTestLines = 5000

var (
	cifWords = []string{"data_", "_entry.id", "loop_"}
	pdbWords = []string{"COMPND", "SOURCE", "REMARK", "SEQRES", "HETATM", "ATOM", "HEADER"}
)

// Sniff opens a file and guesses its format from the first lines. It
// returns an extension the registry knows: ".cif", ".pdb" or ".fasta".
func Sniff(path string) (string, error) {
	fz, err := zwrap.Open(path)
	if err != nil {
		return "", err
	}
	defer fz.Close()
	scnnr := bufio.NewScanner(fz)
	scnnr.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for i := 0; i < maxTestLines && scnnr.Scan(); i++ {
		s := scnnr.Text()
		if strings.HasPrefix(s, ">") {
			return ".fasta", nil
		}
		for _, w := range cifWords {
			if strings.HasPrefix(s, w) {
				return ".cif", nil
			}
		}
		for _, w := range pdbWords {
			if strings.HasPrefix(s, w) {
				return ".pdb", nil
			}
		}
	}
	if err := scnnr.Err(); err != nil {
		return "", errors.Wrapf(err, "reading %s", path)
	}
	return "", errors.Wrapf(ErrUnrecognised, "%s", path)
}

// ForRead picks the format for an input file by its extension and, if
// that does not work, by looking inside.
func ForRead(reg *format.Registry, path string) (format.Format, error) {
	f, err := reg.ForReadPath(path)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, format.ErrUnknownExtension) {
		return nil, err
	}
	ext, err := Sniff(path)
	if err != nil {
		return nil, err
	}
	logger.Logger.Debugw("guessed format", "file", path, "ext", ext)
	return reg.Lookup(ext)
}
