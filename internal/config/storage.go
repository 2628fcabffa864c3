package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"racectl/pkg/logging"
)

// Storage provides generic storage functionality for racectl records
// using a single data directory approach
type Storage struct {
	mu      sync.RWMutex
	dataDir string
}

// NewStorage creates a new Storage instance rooted at dataDir
func NewStorage(dataDir string) *Storage {
	return &Storage{dataDir: dataDir}
}

// DataDir returns the root directory of the storage
func (ds *Storage) DataDir() string {
	return ds.dataDir
}

// Save stores data for the given entity type and name
// entityType: subdirectory name (environments, deployments)
// name: filename without extension
// data: file content to write
func (ds *Storage) Save(entityType string, name string, data []byte) error {
	if err := checkKey(entityType, name); err != nil {
		return err
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()

	targetDir := filepath.Join(ds.dataDir, entityType)
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", targetDir, err)
	}

	filePath := ds.filePath(entityType, name)

	// Write through a temp file so readers never observe a torn record.
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, filePath); err != nil {
		return fmt.Errorf("failed to replace file %s: %w", filePath, err)
	}

	logging.Debug("Store", "Saved %s/%s to %s", entityType, name, filePath)
	return nil
}

// Load retrieves data for the given entity type and name
// Returns the file content, or an error matching ErrNotFound
func (ds *Storage) Load(entityType string, name string) ([]byte, error) {
	if err := checkKey(entityType, name); err != nil {
		return nil, err
	}

	ds.mu.RLock()
	defer ds.mu.RUnlock()

	filePath := ds.filePath(entityType, name)
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s/%s: %w", entityType, name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	logging.Debug("Store", "Loaded %s/%s from %s", entityType, name, filePath)
	return data, nil
}

// Exists reports whether an entity is stored
func (ds *Storage) Exists(entityType string, name string) bool {
	if checkKey(entityType, name) != nil {
		return false
	}

	ds.mu.RLock()
	defer ds.mu.RUnlock()

	_, err := os.Stat(ds.filePath(entityType, name))
	return err == nil
}

// Delete removes the file for the given entity type and name
func (ds *Storage) Delete(entityType string, name string) error {
	if err := checkKey(entityType, name); err != nil {
		return err
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()

	filePath := ds.filePath(entityType, name)
	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s/%s: %w", entityType, name, ErrNotFound)
		}
		return fmt.Errorf("failed to delete file %s: %w", filePath, err)
	}

	logging.Debug("Store", "Deleted %s/%s from %s", entityType, name, filePath)
	return nil
}

// List returns all stored names for the given entity type, sorted
func (ds *Storage) List(entityType string) ([]string, error) {
	if entityType == "" {
		return nil, fmt.Errorf("entityType cannot be empty")
	}

	ds.mu.RLock()
	defer ds.mu.RUnlock()

	names, err := listFilesInDirectory(filepath.Join(ds.dataDir, entityType))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", entityType, err)
	}

	logging.Debug("Store", "Listed %d %s entities", len(names), entityType)
	return names, nil
}

// EntityDir returns a per-entity directory for files that accompany a
// record, such as a deployment's distribution and lock marker. The directory
// is not created.
func (ds *Storage) EntityDir(entityType string, name string) string {
	return filepath.Join(ds.dataDir, entityType, sanitizeFilename(name))
}

func (ds *Storage) filePath(entityType, name string) string {
	return filepath.Join(ds.dataDir, entityType, sanitizeFilename(name)+".yaml")
}

func checkKey(entityType, name string) error {
	if entityType == "" {
		return fmt.Errorf("entityType cannot be empty")
	}
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	return nil
}

// listFilesInDirectory lists all .yaml files in a directory and returns their base names
func listFilesInDirectory(dirPath string) ([]string, error) {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return []string{}, nil
	}

	files, err := filepath.Glob(filepath.Join(dirPath, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob yaml files: %w", err)
	}

	names := make([]string, 0, len(files))
	for _, filePath := range files {
		basename := filepath.Base(filePath)
		names = append(names, strings.TrimSuffix(basename, filepath.Ext(basename)))
	}
	sort.Strings(names)

	return names, nil
}

// sanitizeFilename ensures the filename is safe for filesystem operations
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_", " ", "_",
	)
	sanitized := replacer.Replace(strings.TrimSpace(name))

	for strings.Contains(sanitized, "__") {
		sanitized = strings.ReplaceAll(sanitized, "__", "_")
	}
	sanitized = strings.Trim(sanitized, "_.")

	if sanitized == "" {
		sanitized = "unnamed"
	}

	return sanitized
}
