package graph

import "errors"

var (
	// ErrUnnamedPackage indicates a snapshot record without a package name.
	ErrUnnamedPackage = errors.New("package record has no name")
	// ErrUnknownFormat indicates an export format that is not supported.
	ErrUnknownFormat = errors.New("unknown graph output format")
)
