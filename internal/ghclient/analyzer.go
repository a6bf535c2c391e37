package ghclient

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// RepoAnalysis summarizes the structure of a cloned repository.
type RepoAnalysis struct {
	Owner       string
	Repo        string
	TotalFiles  int
	TotalSize   int64
	Languages   map[string]int  // extension -> file count
	TopLevel    []string        // top-level directories and files
	LargestDirs []DirectorySize // directories by cumulative size, descending
}

// DirectorySize pairs a top-level directory with its cumulative byte size.
type DirectorySize struct {
	Path string
	Size int64
}

// Analyzer shallow-clones a repository and walks its tree.
type Analyzer struct {
	token    string
	logger   *log.Logger
	tempDirs []string
}

func NewAnalyzer(token string) *Analyzer {
	return &Analyzer{
		token:  token,
		logger: log.New(os.Stdout, "[RepoAnalyzer] ", log.LstdFlags),
	}
}

// ParseRepo splits "owner/repo" into its parts.
func ParseRepo(spec string) (owner, repo string, err error) {
	spec = strings.TrimSpace(spec)
	segments := strings.SplitN(spec, "/", 3)
	if len(segments) != 2 || segments[0] == "" || segments[1] == "" {
		return "", "", fmt.Errorf("invalid repo format %q: expected \"owner/repo\"", spec)
	}
	return segments[0], segments[1], nil
}

// Analyze clones owner/repo at depth 1 and summarizes its file tree.
func (a *Analyzer) Analyze(ctx context.Context, owner, repo string) (*RepoAnalysis, error) {
	dir, err := a.clone(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	analysis, err := analyzeTree(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze %s/%s: %w", owner, repo, err)
	}
	analysis.Owner = owner
	analysis.Repo = repo
	return analysis, nil
}

func (a *Analyzer) clone(ctx context.Context, owner, repo string) (string, error) {
	tmpDir, err := os.MkdirTemp("", fmt.Sprintf("bmasterai-repo-%s-%s-*", owner, repo))
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	a.tempDirs = append(a.tempDirs, tmpDir)

	cloneOpts := &git.CloneOptions{
		URL:   fmt.Sprintf("https://github.com/%s/%s.git", owner, repo),
		Depth: 1,
	}
	if a.token != "" {
		cloneOpts.Auth = &githttp.BasicAuth{
			Username: "x-access-token",
			Password: a.token,
		}
	}

	a.logger.Printf("cloning %s/%s", owner, repo)
	if _, err := git.PlainCloneContext(ctx, tmpDir, false, cloneOpts); err != nil {
		return "", fmt.Errorf("failed to clone %s/%s: %w", owner, repo, err)
	}
	return tmpDir, nil
}

// Cleanup removes all temp directories created by Analyze.
func (a *Analyzer) Cleanup() {
	for _, dir := range a.tempDirs {
		if err := os.RemoveAll(dir); err != nil {
			a.logger.Printf("warning: failed to remove %s: %v", dir, err)
		}
	}
	a.tempDirs = nil
}

func analyzeTree(root string) (*RepoAnalysis, error) {
	analysis := &RepoAnalysis{
		Languages: make(map[string]int),
	}
	dirSizes := make(map[string]int64)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}

		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			if filepath.Dir(rel) == "." && rel != "." {
				analysis.TopLevel = append(analysis.TopLevel, rel+"/")
			}
			return nil
		}

		if filepath.Dir(rel) == "." {
			analysis.TopLevel = append(analysis.TopLevel, rel)
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}

		analysis.TotalFiles++
		analysis.TotalSize += info.Size()

		if ext := strings.ToLower(filepath.Ext(path)); ext != "" {
			analysis.Languages[ext]++
		}

		// attribute size to the top-level directory
		top := rel
		if idx := strings.IndexRune(rel, filepath.Separator); idx > 0 {
			top = rel[:idx]
		}
		dirSizes[top] += info.Size()
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(analysis.TopLevel)
	for dir, size := range dirSizes {
		analysis.LargestDirs = append(analysis.LargestDirs, DirectorySize{Path: dir, Size: size})
	}
	sort.Slice(analysis.LargestDirs, func(i, j int) bool {
		if analysis.LargestDirs[i].Size != analysis.LargestDirs[j].Size {
			return analysis.LargestDirs[i].Size > analysis.LargestDirs[j].Size
		}
		return analysis.LargestDirs[i].Path < analysis.LargestDirs[j].Path
	})
	return analysis, nil
}
