// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package recordset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Medium stores one serialized document per collection name.
type Medium interface {
	// Read returns the stored document for name, or nil if none exists.
	Read(ctx context.Context, name string) ([]byte, error)

	// Write atomically replaces the stored document for name.
	Write(ctx context.Context, name string, data []byte) error
}

// Dir is a Medium keeping each collection in <dir>/<name>.json.
type Dir struct {
	path string
}

var _ Medium = (*Dir)(nil)

// OpenDir returns a Dir rooted at path, creating the directory if needed.
func OpenDir(path string) (*Dir, error) {
	info, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, err
		}
		info, err = os.Stat(path)
		if err != nil {
			return nil, err
		}
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", path)
	}
	return &Dir{path: path}, nil
}

// Path returns the file backing the named collection.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.path, name+".json")
}

// Read loads the collection file. A missing file reads as nil.
func (d *Dir) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(d.Path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

// Write replaces the collection file via a temporary file and rename, so
// readers see either the old or the new document.
func (d *Dir) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(d.path, name+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, d.Path(name)); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
