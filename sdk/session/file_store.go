package session

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"github.com/krancour/bizdesk/internal/file"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

// FileStore is a Store that persists all entries to a single JSON document on
// the local filesystem. Each write replaces the document atomically.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a FileStore backed by the file at the specified path.
// The file and its parent directory are created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
	}
}

// NewFileStoreInHome returns a FileStore backed by the session file within
// the BizDesk home directory (~/.bizdesk/session).
func NewFileStoreInHome() (*FileStore, error) {
	bizdeskHome, err := Home()
	if err != nil {
		return nil, err
	}
	return NewFileStore(filepath.Join(bizdeskHome, "session")), nil
}

// Home returns the path of the BizDesk home directory.
func Home() (string, error) {
	homeDir, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "error locating user's home directory")
	}
	return filepath.Join(homeDir, ".bizdesk"), nil
}

func (f *FileStore) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries, err := f.read()
	if err != nil {
		return "", false, err
	}
	val, ok := entries[key]
	return val, ok, nil
}

func (f *FileStore) Set(entries map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, err := f.read()
	if err != nil {
		// An unreadable document is replaced rather than merged into
		current = map[string]string{}
	}
	for k, v := range entries {
		current[k] = v
	}
	return f.write(current)
}

func (f *FileStore) Delete(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !file.Exists(f.path) {
		return nil
	}
	current, err := f.read()
	if err != nil {
		current = map[string]string{}
	}
	for _, k := range keys {
		delete(current, k)
	}
	return f.write(current)
}

func (f *FileStore) read() (map[string]string, error) {
	entries := map[string]string{}
	if !file.Exists(f.path) {
		return entries, nil
	}
	docBytes, err := ioutil.ReadFile(f.path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading session file at %s", f.path)
	}
	if len(docBytes) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(docBytes, &entries); err != nil {
		return nil, errors.Wrapf(err, "error parsing session file at %s", f.path)
	}
	return entries, nil
}

func (f *FileStore) write(entries map[string]string) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrapf(err, "error creating directory %s", dir)
	}
	docBytes, err := json.Marshal(entries)
	if err != nil {
		return errors.Wrap(err, "error marshaling session state")
	}
	tmp, err := ioutil.TempFile(dir, ".session-")
	if err != nil {
		return errors.Wrapf(err, "error creating temporary file in %s", dir)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(docBytes); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "error writing to %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "error closing %s", tmp.Name())
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return errors.Wrapf(err, "error setting permissions on %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return errors.Wrapf(err, "error writing to %s", f.path)
	}
	return nil
}
