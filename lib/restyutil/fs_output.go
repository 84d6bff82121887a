package restyutil

import (
	"log/slog"
	"os"
	"path/filepath"
)

// FilesystemOutput writes debug artifacts (raw bodies, http message dumps)
// into a single directory, one file per id.
type FilesystemOutput struct {
	directory string
}

func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Dir() string {
	return o.directory
}

func (o FilesystemOutput) Write(id string, contents string) {
	path := filepath.Join(o.directory, filepath.Base(id))
	err := os.WriteFile(path, []byte(contents), 0o600)
	if err != nil {
		slog.Warn("failed to write debug artifact", "id", id, "err", err)
		return
	}
	slog.Debug("saved debug artifact", "path", path)
}
