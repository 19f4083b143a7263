package fileutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Tests for search.go

func TestSearchPaths(t *testing.T) {
	tmpDir := t.TempDir()

	// Create test files
	file1 := filepath.Join(tmpDir, "file1.txt")
	file2 := filepath.Join(tmpDir, "file2.txt")
	if err := os.WriteFile(file1, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	tests := []struct {
		name    string
		paths   []string
		want    string
		wantErr bool
	}{
		{
			"finds first existing file",
			[]string{file1, file2},
			file1,
			false,
		},
		{
			"returns error when no files exist",
			[]string{file2, filepath.Join(tmpDir, "nonexistent.txt")},
			"",
			true,
		},
		{
			"handles empty path list",
			[]string{},
			"",
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SearchPaths(tt.paths)
			if (err != nil) != tt.wantErr {
				t.Errorf("SearchPaths() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("SearchPaths() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearchPathsOptional(t *testing.T) {
	tmpDir := t.TempDir()

	// Create test file
	file1 := filepath.Join(tmpDir, "file1.txt")
	if err := os.WriteFile(file1, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	tests := []struct {
		name  string
		paths []string
		want  string
	}{
		{
			"finds existing file",
			[]string{file1},
			file1,
		},
		{
			"returns empty string when not found",
			[]string{filepath.Join(tmpDir, "nonexistent.txt")},
			"",
		},
		{
			"handles empty path list",
			[]string{},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SearchPathsOptional(tt.paths)
			if got != tt.want {
				t.Errorf("SearchPathsOptional() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultConfigPaths(t *testing.T) {
	paths := DefaultConfigPaths("test.yaml")

	if len(paths) != 3 {
		t.Errorf("DefaultConfigPaths() returned %d paths, want 3", len(paths))
	}

	// Check that paths contain the filename
	for i, path := range paths {
		if !strings.Contains(path, "test.yaml") {
			t.Errorf("DefaultConfigPaths()[%d] = %v, should contain 'test.yaml'", i, path)
		}
	}

	// Check that the system path is /etc/interactbox/...
	if !strings.HasPrefix(paths[2], "/etc/interactbox") {
		t.Errorf("DefaultConfigPaths()[2] should start with /etc/interactbox, got %v", paths[2])
	}
}

func TestFindConfigOptional(t *testing.T) {
	tmpDir := t.TempDir()
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origDir) })

	if got := FindConfigOptional("interactbox.yaml"); got != "" {
		t.Errorf("FindConfigOptional() = %v, want empty before config exists", got)
	}

	// The config subdirectory is searched after the working directory
	if err := os.Mkdir("config", 0755); err != nil {
		t.Fatalf("Failed to create config directory: %v", err)
	}
	nested := filepath.Join("config", "interactbox.yaml")
	if err := os.WriteFile(nested, []byte("listen: :8765"), 0644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}

	if got := FindConfigOptional("interactbox.yaml"); got != nested {
		t.Errorf("FindConfigOptional() = %v, want %v", got, nested)
	}

	if err := os.WriteFile("interactbox.yaml", []byte("listen: :8765"), 0644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}

	if got := FindConfigOptional("interactbox.yaml"); got != "interactbox.yaml" {
		t.Errorf("FindConfigOptional() = %v, want interactbox.yaml", got)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()

	// Create test file
	testFile := filepath.Join(tmpDir, "test.txt")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	// Create test directory
	testDir := filepath.Join(tmpDir, "testdir")
	if err := os.Mkdir(testDir, 0755); err != nil {
		t.Fatalf("Failed to create test directory: %v", err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"existing file", testFile, true},
		{"nonexistent file", filepath.Join(tmpDir, "nonexistent.txt"), false},
		{"directory", testDir, false}, // Directories return false
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FileExists(tt.path)
			if got != tt.want {
				t.Errorf("FileExists() = %v, want %v", got, tt.want)
			}
		})
	}
}
