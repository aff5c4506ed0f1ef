package subsume

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// cspell:words nquads

var errWrongArgCount = errors.New("need exactly one argument")

// FindSource resolves the path to an N-Quads file.
// It accepts either the file itself or a directory holding exactly one
// '*.nq' file. FindSource does not guarantee that contents are loadable.
func FindSource(argv ...string) (nq string, err error) {
	if len(argv) != 1 {
		return "", errWrongArgCount
	}

	isDir, err := isDirectory(argv[0])
	if err != nil {
		return "", err
	}

	if isDir {
		base := argv[0]
		nqs, err := filepath.Glob(filepath.Join(base, "*.nq"))
		if err != nil {
			return "", err
		}
		if len(nqs) != 1 {
			return "", fmt.Errorf("need exactly one '*.nq' in %q, but got %d", base, len(nqs))
		}
		nq = nqs[0]
	} else {
		nq = argv[0]
	}

	ok, err := isFile(nq)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%q is not a regular file", nq)
	}

	return nq, nil
}

func isDirectory(path string) (ok bool, err error) {
	stats, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return stats.Mode().IsDir(), nil
}

// isFile checks if path is a regular file.
func isFile(path string) (ok bool, err error) {
	stats, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return stats.Mode().IsRegular(), nil
}
