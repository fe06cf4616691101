// Package rewrite replaces shopify:// protocol references inside theme
// source files with concrete delivery URLs from the target store.
package rewrite

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/storefront-tools/mediasync/internal/match"
)

// Theme subdirectories that may carry protocol references, and the
// text-based extensions worth scanning. Binary assets are never touched.
var (
	themeDirs = []string{"layout", "templates", "sections", "snippets", "config", "assets", "blocks"}
	textExts  = map[string]bool{".liquid": true, ".json": true, ".js": true, ".css": true}
)

// tokenPattern matches an internal protocol reference. The category segment
// is informational only; resolution goes by the trailing filename.
var tokenPattern = regexp.MustCompile(`shopify://(shop_images|files|videos)/[^\s"'<>\\]+`)

// Resolver maps a filename to its delivery URL on the target store.
// Satisfied by *match.FilenameMatcher.
type Resolver interface {
	Resolve(ctx context.Context, filename string) (string, error)
}

type Result struct {
	FilesScanned  int
	FilesModified int
	Resolved      int
	Unresolved    []string
}

type Rewriter struct {
	resolver Resolver
	logger   *zap.Logger
}

func NewRewriter(resolver Resolver, logger *zap.Logger) *Rewriter {
	return &Rewriter{resolver: resolver, logger: logger}
}

// Rewrite scans the theme tree under root and rewrites every resolvable
// protocol token in place. Files are written back only when their content
// actually changed, so a second run over an already-rewritten tree is a
// no-op. Unresolvable tokens are left untouched and reported.
func (r *Rewriter) Rewrite(ctx context.Context, root string) (Result, error) {
	files, err := r.collect(root)
	if err != nil {
		return Result{}, err
	}

	result := Result{}
	resolved := map[string]string{} // token -> delivery URL, shared across files
	unresolved := map[string]bool{}

	for _, file := range files {
		result.FilesScanned++
		if err := r.rewriteFile(ctx, file, resolved, unresolved, &result); err != nil {
			return result, err
		}
	}

	for token := range unresolved {
		result.Unresolved = append(result.Unresolved, token)
	}
	sort.Strings(result.Unresolved)

	r.logger.Info("rewrite finished",
		zap.Int("files_scanned", result.FilesScanned),
		zap.Int("files_modified", result.FilesModified),
		zap.Int("references_resolved", result.Resolved),
		zap.Int("unresolved", len(result.Unresolved)))

	return result, nil
}

func (r *Rewriter) collect(root string) ([]string, error) {
	var files []string
	for _, dir := range themeDirs {
		base := filepath.Join(root, dir)
		if _, err := os.Stat(base); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && textExts[filepath.Ext(p)] {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", base, err)
		}
	}
	return files, nil
}

func (r *Rewriter) rewriteFile(ctx context.Context, file string, resolved map[string]string, unresolved map[string]bool, result *Result) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("reading %s: %w", file, err)
	}

	content := string(data)
	tokens := distinct(tokenPattern.FindAllString(content, -1))
	if len(tokens) == 0 {
		return nil
	}

	updated := content
	for _, token := range tokens {
		if unresolved[token] {
			continue
		}
		url, ok := resolved[token]
		if !ok {
			url, err = r.resolver.Resolve(ctx, path.Base(token))
			if err != nil {
				if !errors.Is(err, match.ErrNoMatch) {
					// Lookup transport errors are per-token, not
					// fatal: the token stays as-is.
					r.logger.Warn("reference lookup failed",
						zap.String("token", token), zap.Error(err))
				}
				unresolved[token] = true
				continue
			}
			resolved[token] = url
		}

		updated = strings.ReplaceAll(updated, token, url)
		result.Resolved++
	}

	if updated == content {
		return nil
	}

	info, err := os.Stat(file)
	if err != nil {
		return fmt.Errorf("stat %s: %w", file, err)
	}
	if err := os.WriteFile(file, []byte(updated), info.Mode().Perm()); err != nil {
		return fmt.Errorf("writing %s: %w", file, err)
	}
	result.FilesModified++
	return nil
}

func distinct(tokens []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
