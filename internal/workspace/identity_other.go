//go:build !unix

package workspace

// fileKey falls back to the fully resolved path where inodes are unavailable.
type fileKey struct {
	path string
}

func keyOf(path string) (fileKey, error) {
	resolved, err := resolve(path)
	if err != nil {
		return fileKey{}, err
	}
	return fileKey{path: resolved}, nil
}
