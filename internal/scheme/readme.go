package scheme

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ChrisgKent/primal-page/internal/errors"
)

const licenseTextCCBySA40 = `

------------------------------------------------------------------------

This work is licensed under a [Creative Commons Attribution-ShareAlike 4.0 International License](http://creativecommons.org/licenses/by-sa/4.0/)

![](https://i.creativecommons.org/l/by-sa/4.0/88x31.png)`

// RenderReadme produces the scheme's human summary document. The validator
// uses it as a drift sentinel: the scheme name, amplicon size and version
// must appear literally in the rendered text.
func RenderReadme(info *Info, pngs []string) (string, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s %dbp %s\n\n", info.SchemeName, info.AmpliconSize, info.SchemeVersion)
	fmt.Fprintf(&sb, "[primalscheme labs](https://labs.primalscheme.com/detail/%s/%d/%s)\n\n",
		info.SchemeName, info.AmpliconSize, info.SchemeVersion)

	if info.Description != "" {
		sb.WriteString("## Description\n\n")
		fmt.Fprintf(&sb, "%s\n\n", info.Description)
	}

	sb.WriteString("## Overviews\n\n")
	for _, png := range pngs {
		name := filepath.Base(png)
		fmt.Fprintf(&sb, "![%s](work/%s)\n\n", name, name)
	}

	sb.WriteString("## Details\n\n")
	details, err := json.MarshalIndent(info, "", "    ")
	if err != nil {
		return "", errors.New(err).
			Component("scheme").
			Category(errors.CategoryValidation).
			Build()
	}
	fmt.Fprintf(&sb, "```json\n%s\n```\n\n", details)

	if info.License == DefaultLicense {
		sb.WriteString(licenseTextCCBySA40)
	}

	return sb.String(), nil
}

// WriteReadme renders and atomically writes the README.md for the scheme
// directory dir
func WriteReadme(info *Info, dir string) error {
	pngs, err := filepath.Glob(filepath.Join(dir, "work", "*.png"))
	if err != nil {
		return errors.New(err).
			Component("scheme").
			Category(errors.CategoryFileIO).
			Build()
	}
	content, err := RenderReadme(info, pngs)
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(dir, "README.md"), []byte(content))
}

// TrimFileWhitespace rewrites the file at inPath to outPath with the
// whitespace trimmed from the end of every line. Reads the file into memory,
// not suitable for very large files.
func TrimFileWhitespace(inPath, outPath string) error {
	in, err := os.Open(inPath)
	if err != nil {
		return errors.New(err).
			Component("scheme").
			Category(errors.CategoryFileIO).
			FileContext(inPath).
			Build()
	}
	defer in.Close()

	var sb strings.Builder
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)
	for scanner.Scan() {
		sb.WriteString(strings.TrimRight(scanner.Text(), " \t\r"))
		sb.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return errors.New(err).
			Component("scheme").
			Category(errors.CategoryFileIO).
			FileContext(inPath).
			Build()
	}

	return writeFileAtomic(outPath, []byte(sb.String()))
}

// writeFileAtomic writes data to a temporary file in path's directory and
// renames it over path, so readers never observe a partial artifact.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return errors.New(err).
			Component("scheme").
			Category(errors.CategoryFileIO).
			FileContext(path).
			Build()
	}
	tmpName := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr == nil {
		writeErr = closeErr
	}
	if writeErr == nil {
		writeErr = os.Rename(tmpName, path)
	}
	if writeErr != nil {
		os.Remove(tmpName)
		return errors.Newf("writing %s: %w", path, writeErr).
			Component("scheme").
			Category(errors.CategoryFileIO).
			Build()
	}
	return nil
}
