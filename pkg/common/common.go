// Package common has the exit codes of the commands and a helper for
// writing test input.
package common

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

const (
	ExitSuccess = iota
	ExitFailure
	ExitUsageError
)

// WrtTemp writes a string to a file called name in dir and returns the
// path. With dir "", it goes to a new temporary file whose name ends
// with name. It is used all over the place in testing.
func WrtTemp(dir, name, s string) (string, error) {
	if dir != "" {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(s), 0o644); err != nil {
			return "", errors.Wrapf(err, "writing test file %s", path)
		}
		return path, nil
	}
	fTmp, err := os.CreateTemp("", "_del_me_testing*"+name)
	if err != nil {
		return "", errors.Wrap(err, "tempfile fail")
	}
	defer fTmp.Close()
	if _, err := fTmp.WriteString(s); err != nil {
		return "", errors.Wrapf(err, "writing string to temp file %v", fTmp.Name())
	}
	return fTmp.Name(), nil
}
