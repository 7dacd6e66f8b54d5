package cli

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/afero"

	"github.com/roach88/dict2sql/internal/ast"
)

// QueryDoc is one statement read from a query file.
type QueryDoc struct {
	File  string    `json:"file"`
	Index int       `json:"index"`
	Value ast.Value `json:"-"`
}

// LoadQueries reads query files. A path may be a file or a directory; a
// directory contributes every file with a known extension, in sorted order.
// A document whose top level is a list holds one statement per element.
func LoadQueries(fs afero.Fs, paths []string) ([]QueryDoc, error) {
	var files []string
	for _, p := range paths {
		found, err := expandPath(fs, p)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: "no query files found"}
	}

	var docs []QueryDoc
	for _, file := range files {
		values, err := LoadQueryFile(fs, file)
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			docs = append(docs, QueryDoc{File: file, Index: i, Value: v})
		}
	}
	return docs, nil
}

// LoadQueryFile decodes one file according to its extension.
func LoadQueryFile(fs afero.Fs, path string) ([]ast.Value, error) {
	f, err := ast.FormatFromPath(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeUnsupported, Path: path, Message: err.Error(), Err: err}
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "file not found", Err: err}
		}
		return nil, &LoadError{Code: ErrCodeGeneric, Path: path, Message: err.Error(), Err: err}
	}

	v, err := ast.Decode(f, data, path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeDecodeFailed, Path: path, Message: err.Error(), Err: err}
	}

	if list, ok := v.(ast.List); ok {
		return list, nil
	}
	return []ast.Value{v}, nil
}

func expandPath(fs afero.Fs, path string) ([]string, error) {
	info, err := fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "path not found", Err: err}
		}
		return nil, &LoadError{Code: ErrCodeGeneric, Path: path, Message: err.Error(), Err: err}
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = afero.Walk(fs, path, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}
		if _, ferr := ast.FormatFromPath(p); ferr == nil {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Path: path, Message: fmt.Sprintf("error scanning directory: %v", err), Err: err}
	}
	sort.Strings(files)
	return files, nil
}
