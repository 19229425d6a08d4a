package source

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/VectorBits/Chainsight/internal/logger"
)

// 单文件读取上限，超过的文件跳过而不是失败
const maxFileSize = 1 << 20

var skippedDirs = map[string]bool{
	".git": true, "node_modules": true, "artifacts": true,
	"cache": true, "out": true, "lib": true,
}

// DirProvider 从本地目录递归收集源文件
type DirProvider struct{}

func NewDirProvider() *DirProvider { return &DirProvider{} }

func (p *DirProvider) ListFiles(ctx context.Context, ref string) ([]SourceFile, error) {
	info, err := os.Stat(ref)
	if err != nil {
		return nil, newError(CategoryNotFound, err, "The requested source could not be found; verify the reference")
	}
	if !info.IsDir() {
		content, err := os.ReadFile(ref)
		if err != nil {
			return nil, Classify(err)
		}
		return []SourceFile{{Path: filepath.Base(ref), Content: string(content), Kind: KindOf(ref)}}, nil
	}

	files := []SourceFile{}
	walkErr := filepath.WalkDir(ref, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil || info.Size() > maxFileSize {
			logger.Debug("skipping %s: unreadable or too large", path)
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			// 单个文件读不动不影响整体
			logger.Debug("skipping %s: %v", path, err)
			return nil
		}

		rel, relErr := filepath.Rel(ref, path)
		if relErr != nil {
			rel = path
		}
		files = append(files, SourceFile{
			Path:    filepath.ToSlash(rel),
			Content: string(content),
			Kind:    KindOf(path),
		})
		return nil
	})
	if walkErr != nil {
		return nil, Classify(walkErr)
	}
	return files, nil
}

// LooksLikeDir 判断引用是否像本地路径
func LooksLikeDir(ref string) bool {
	if strings.TrimSpace(ref) == "" {
		return false
	}
	_, err := os.Stat(ref)
	return err == nil
}
