package discovery

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/gurisko/jbsearch/internal/limits"
)

// readProjectName returns the first line of <project>/.idea/.name, or "" if
// the file is absent, unreadable or blank.
func readProjectName(projectPath string) string {
	f, err := os.Open(filepath.Join(projectPath, ".idea", ".name"))
	if err != nil {
		return ""
	}
	defer f.Close()

	sc := bufio.NewScanner(io.LimitReader(f, limits.NameFile))
	if !sc.Scan() {
		return ""
	}
	return strings.TrimSpace(sc.Text())
}

// detectGitBranch returns the checked-out branch of the project, or "" when
// the project is not a git repository or HEAD is detached.
func detectGitBranch(projectPath string) string {
	repo, err := git.PlainOpen(projectPath)
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	if head.Name().IsBranch() {
		return head.Name().Short()
	}
	return ""
}
