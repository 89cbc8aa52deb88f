package scheme

import (
	"crypto/md5" //nolint:gosec // content fingerprint, not a security boundary
	"encoding/hex"
	"io"
	"os"

	"github.com/ChrisgKent/primal-page/internal/errors"
)

// Hasher is the content-hash collaborator: a stable digest over raw file
// bytes. The repository's published hashes are MD5; tests may swap in
// something else.
type Hasher func(path string) (string, error)

// MD5File is the default Hasher
func MD5File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.New(err).
			Component("scheme").
			Category(errors.CategoryFileIO).
			FileContext(path).
			Build()
	}
	defer f.Close()

	h := md5.New() //nolint:gosec
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.New(err).
			Component("scheme").
			Category(errors.CategoryFileIO).
			FileContext(path).
			Build()
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
