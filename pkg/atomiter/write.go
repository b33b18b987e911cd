package atomiter

import (
	"strings"

	"github.com/andrew-torda/atomflow/pkg/atom"
	"github.com/cockroachdb/errors"
)

const placeholder = "{}"

// pathFor puts the values of fields, taken from a, in the {} of tmpl.
func pathFor(tmpl string, fields []string, a *atom.Atom) (string, error) {
	parts := strings.Split(tmpl, placeholder)
	var b strings.Builder
	b.WriteString(parts[0])
	for i, f := range fields {
		v, err := a.Get(f)
		if err != nil {
			return "", errors.Wrap(err, "path field")
		}
		b.WriteString(v.String())
		b.WriteString(parts[i+1])
	}
	return b.String(), nil
}

// Write writes each group to its own file with the format given by the
// extension. The n-th {} in tmpl is replaced by the value of pathFmt[n]
// in the group's first atom. A group that fails is logged and skipped,
// and its error returned. A group going to a file that an earlier group
// wrote is an error. An error from upstream ends the batch. Write
// returns the files written and the errors, both in group order.
func (it *Iterator) Write(tmpl string, pathFmt ...string) ([]string, []error) {
	if n := strings.Count(tmpl, placeholder); n != len(pathFmt) {
		return nil, []error{errors.Wrapf(ErrTemplate, "%q has %d %s for %d fields", tmpl, n, placeholder, len(pathFmt))}
	}
	reg := it.registry()
	var written []string
	var errs []error
	seen := make(map[string]bool)
	for n := 1; ; n++ {
		g, err := it.Next()
		if errors.Is(err, Done) {
			break
		}
		if err != nil {
			logWriteFail(n, "", err)
			errs = append(errs, err)
			break
		}
		path, err := pathFor(tmpl, pathFmt, g[0])
		if err == nil && seen[path] {
			err = errors.Wrapf(ErrPathCollision, "%s", path)
		}
		if err != nil {
			logWriteFail(n, path, err)
			errs = append(errs, errors.Wrapf(err, "group %d", n))
			continue
		}
		f, err := reg.ForPath(path)
		if err != nil {
			logWriteFail(n, path, err)
			errs = append(errs, errors.Wrapf(err, "group %d", n))
			continue
		}
		names, err := f.ToFile(g, path)
		if err != nil {
			logWriteFail(n, path, err)
			errs = append(errs, errors.Wrapf(err, "group %d", n))
			continue
		}
		seen[path] = true
		written = append(written, names...)
	}
	return written, errs
}
