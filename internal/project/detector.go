package project

import (
	"os"
	"path/filepath"
)

// rootMarkers are entries whose presence makes a directory a project root.
var rootMarkers = []string{".git", "package.json", "tsconfig.json", "jsconfig.json"}

// Info contains information about the detected project.
// Named 'Info' instead of 'ProjectInfo' to avoid stuttering (project.Info vs project.ProjectInfo).
type Info struct {
	Root   string
	HasGit bool
	Type   string // typescript, javascript, unknown
}

// FindProjectRoot searches for a project root starting from the given path
// and climbing up the directory tree if needed.
func FindProjectRoot(startPath string) (string, error) {
	absPath, err := filepath.Abs(startPath)
	if err != nil {
		return "", err
	}

	currentDir := absPath
	for {
		if isProjectRoot(currentDir) {
			return currentDir, nil
		}

		parent := filepath.Dir(currentDir)
		if parent == currentDir {
			// Reached filesystem root
			break
		}
		currentDir = parent
	}

	// Default to the start path if no project root found
	return absPath, nil
}

// isProjectRoot determines if a directory is a project root
func isProjectRoot(path string) bool {
	for _, marker := range rootMarkers {
		if exists(filepath.Join(path, marker)) {
			return true
		}
	}
	return false
}

// Detect detects project information at the given path.
// Named 'Detect' instead of 'DetectProjectInfo' to avoid stuttering.
func Detect(rootPath string) *Info {
	info := &Info{
		Root:   rootPath,
		HasGit: exists(filepath.Join(rootPath, ".git")),
		Type:   "unknown",
	}

	switch {
	case exists(filepath.Join(rootPath, "tsconfig.json")):
		info.Type = "typescript"
	case exists(filepath.Join(rootPath, "jsconfig.json")), exists(filepath.Join(rootPath, "package.json")):
		info.Type = "javascript"
	}

	return info
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
