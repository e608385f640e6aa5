package git

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter selects which changed paths are worth analyzing.
type Filter struct {
	// Extensions a path must end with, e.g. ".ts". Empty accepts any file.
	Extensions []string
	// Exclude holds doublestar globs relative to the root.
	Exclude []string
}

// GetStagedFiles returns absolute paths of source files in the git staging area.
// Returns empty slice if not in a git repository.
func GetStagedFiles(rootPath string, filter Filter) ([]string, error) {
	if !IsGitRepo(rootPath) {
		return []string{}, nil
	}

	// --relative limits output to rootPath and makes paths relative to it
	cmd := exec.Command("git", "diff", "--name-only", "--relative", "--staged")
	cmd.Dir = rootPath
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("git diff --staged failed: %w: %s", err, output)
	}

	return filterRelevantFiles(string(output), rootPath, filter)
}

// GetChangedFiles returns absolute paths of all uncommitted source changes (staged + unstaged).
// Returns empty slice if not in a git repository.
func GetChangedFiles(rootPath string, filter Filter) ([]string, error) {
	if !IsGitRepo(rootPath) {
		return []string{}, nil
	}

	// Check if there are any commits
	checkCmd := exec.Command("git", "rev-parse", "HEAD")
	checkCmd.Dir = rootPath
	if err := checkCmd.Run(); err != nil {
		// No commits yet - use all tracked files
		cmd := exec.Command("git", "ls-files")
		cmd.Dir = rootPath
		output, err := cmd.CombinedOutput()
		if err != nil {
			return nil, fmt.Errorf("git ls-files failed: %w: %s", err, output)
		}
		return filterRelevantFiles(string(output), rootPath, filter)
	}

	cmd := exec.Command("git", "diff", "--name-only", "--relative", "HEAD")
	cmd.Dir = rootPath
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("git diff HEAD failed: %w: %s", err, output)
	}

	return filterRelevantFiles(string(output), rootPath, filter)
}

// IsGitRepo checks if the given directory is within a git repository.
func IsGitRepo(rootPath string) bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = rootPath
	cmd.Stderr = nil
	err := cmd.Run()
	return err == nil
}

// filterRelevantFiles keeps existing files that pass filter and returns
// them as absolute paths.
func filterRelevantFiles(gitOutput, rootPath string, filter Filter) ([]string, error) {
	var files []string
	lines := strings.Split(strings.TrimSpace(gitOutput), "\n")

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		absPath := filepath.Join(rootPath, line)

		// git reports deletions too
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			continue
		}

		if !isRelevantFile(line, filter) {
			continue
		}

		files = append(files, absPath)
	}

	return files, nil
}

// isRelevantFile reports whether relPath has an accepted extension and
// matches no exclude pattern.
func isRelevantFile(relPath string, filter Filter) bool {
	slashPath := filepath.ToSlash(relPath)

	if len(filter.Extensions) > 0 {
		lowerPath := strings.ToLower(slashPath)
		matched := false
		for _, ext := range filter.Extensions {
			if strings.HasSuffix(lowerPath, strings.ToLower(ext)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, pattern := range filter.Exclude {
		if ok, _ := doublestar.Match(pattern, slashPath); ok {
			return false
		}
	}

	return true
}
