// Package format says what a file format must do and keeps the table
// of formats by file extension.
package format

import (
	"path/filepath"
	"strings"

	"github.com/andrew-torda/atomflow/pkg/atom"
	"github.com/cockroachdb/errors"
)

var (
	ErrUnknownExtension   = errors.New("no format for extension")
	ErrDuplicateExtension = errors.New("extension registered twice")
	ErrRecipeMismatch     = errors.New("atom does not satisfy the format's recipe")
)

// Format reads and writes one kind of file.
// ToFile returns the names of the files it wrote.
type Format interface {
	Name() string
	Extensions() []string
	Recipe() atom.Recipe
	ReadFile(path string) ([]*atom.Atom, error)
	ToFile(atoms []*atom.Atom, path string) ([]string, error)
}

// Check fails on the first atom that cannot be written by f.
// Formats call it before they create an output file.
func Check(f Format, atoms []*atom.Atom) error {
	r := f.Recipe()
	for i, a := range atoms {
		ok, err := a.Implements(r)
		if err != nil {
			return err
		}
		if !ok {
			return errors.Wrapf(ErrRecipeMismatch, "%s: atom %d %s lacks %v", f.Name(), i, a, a.Missing(r))
		}
	}
	return nil
}

// Registry maps lower case extensions, with the dot, to formats.
// It is filled once at start up and only read after that.
type Registry struct {
	byExt   map[string]Format
	formats []Format
}

func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]Format)}
}

// Register adds a format under all of its extensions. Nothing is added
// if any extension is taken or the recipe is broken.
func (r *Registry) Register(f Format) error {
	if err := f.Recipe().Validate(); err != nil {
		return errors.Wrapf(err, "format %s", f.Name())
	}
	exts := f.Extensions()
	if len(exts) == 0 {
		return errors.Newf("format %s has no extensions", f.Name())
	}
	for _, e := range exts {
		e = normExt(e)
		if old, ok := r.byExt[e]; ok {
			return errors.Wrapf(ErrDuplicateExtension, "%s wanted by %s, owned by %s", e, f.Name(), old.Name())
		}
	}
	for _, e := range exts {
		r.byExt[normExt(e)] = f
	}
	r.formats = append(r.formats, f)
	return nil
}

// MustRegister is for registration at start up.
func (r *Registry) MustRegister(fs ...Format) *Registry {
	for _, f := range fs {
		if err := r.Register(f); err != nil {
			panic(err.Error())
		}
	}
	return r
}

// Formats returns the formats in the order they were registered.
func (r *Registry) Formats() []Format { return append([]Format(nil), r.formats...) }

func normExt(e string) string {
	e = strings.ToLower(e)
	if !strings.HasPrefix(e, ".") {
		e = "." + e
	}
	return e
}

// Lookup finds the format for an extension like ".cif" or "cif".
func (r *Registry) Lookup(ext string) (Format, error) {
	if f, ok := r.byExt[normExt(ext)]; ok {
		return f, nil
	}
	return nil, errors.WithHint(errors.Wrapf(ErrUnknownExtension, "%q", ext), r.known())
}

func (r *Registry) known() string {
	var exts []string
	for _, f := range r.formats {
		exts = append(exts, f.Extensions()...)
	}
	return "known extensions: " + strings.Join(exts, " ")
}

// ForPath picks the format for an output file.
func (r *Registry) ForPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return nil, errors.Wrapf(ErrUnknownExtension, "%q has no extension", path)
	}
	return r.Lookup(ext)
}

// ForReadPath is ForPath, but a trailing .gz is ignored since input
// files are decompressed on the fly.
func (r *Registry) ForReadPath(path string) (Format, error) {
	if strings.EqualFold(filepath.Ext(path), ".gz") {
		path = path[:len(path)-len(".gz")]
	}
	return r.ForPath(path)
}

// Stem is the base name of path without its extension, or without
// both extensions for a gzipped file. "x/1abc.cif.gz" gives "1abc".
func Stem(path string) string {
	base := filepath.Base(path)
	if strings.EqualFold(filepath.Ext(base), ".gz") {
		base = base[:len(base)-len(".gz")]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
