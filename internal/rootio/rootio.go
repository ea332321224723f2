// Package rootio reads ntuple trees and binned histograms from ROOT files.
package rootio

import (
	"errors"
	"fmt"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rhist"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/groot/rtree"
	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hbook/rootcnv"
)

// ErrWrongType is returned when a key holds an object of an unexpected class.
var ErrWrongType = errors.New("rootio: unexpected object type")

// DefaultTree is the ntuple tree name written by the analysis skims.
const DefaultTree = "Events"

// File is an open ROOT file. A File is not safe for concurrent use.
type File struct {
	path string
	f    *riofs.File
}

// Open opens a ROOT file for reading.
func Open(path string) (*File, error) {
	f, err := groot.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rootio: open %s: %w", path, err)
	}
	return &File{path: path, f: f}, nil
}

// Path returns the file path.
func (f *File) Path() string { return f.path }

// Close releases the file.
func (f *File) Close() error {
	return f.f.Close()
}

// Tree returns the named tree.
func (f *File) Tree(name string) (rtree.Tree, error) {
	obj, err := riofs.Dir(f.f).Get(name)
	if err != nil {
		return nil, fmt.Errorf("rootio: %s: get %s: %w", f.path, name, err)
	}
	tree, ok := obj.(rtree.Tree)
	if !ok {
		return nil, fmt.Errorf("%w: %s:%s is %s, not a tree", ErrWrongType, f.path, name, obj.Class())
	}
	return tree, nil
}

// H1D returns the named one-dimensional histogram converted to hbook.
func (f *File) H1D(name string) (*hbook.H1D, error) {
	obj, err := riofs.Dir(f.f).Get(name)
	if err != nil {
		return nil, fmt.Errorf("rootio: %s: get %s: %w", f.path, name, err)
	}
	h, ok := obj.(rhist.H1)
	if !ok {
		return nil, fmt.Errorf("%w: %s:%s is %s, not a 1D histogram", ErrWrongType, f.path, name, obj.Class())
	}
	return rootcnv.H1D(h), nil
}

// TreeCounter counts tree entries, opening each file on demand.
type TreeCounter struct{}

// Entries returns the number of entries of tree in the file at path.
func (TreeCounter) Entries(path, tree string) (int64, error) {
	f, err := Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	t, err := f.Tree(tree)
	if err != nil {
		return 0, err
	}
	return t.Entries(), nil
}
