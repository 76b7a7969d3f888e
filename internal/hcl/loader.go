package hcl

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/critgridgo/internal/config"
	"github.com/vk/critgridgo/internal/ctxlog"
	"github.com/vk/critgridgo/internal/schema"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a new HCL case loader.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Load finds, parses, and merges one or more HCL case files from the given
// paths into a single config.Model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)

	var files []string
	for _, path := range paths {
		resolved, err := resolveCasePath(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resolve case path '%s': %w", path, err)
		}
		files = append(files, resolved...)
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no .hcl case files found in %v", paths)
	}
	logger.Debug("Resolved case files.", "count", len(files))

	merged := &schema.CaseFile{}
	for _, file := range files {
		cfg, err := l.decodeFile(ctx, file)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse case file '%s': %w", file, err)
		}
		merged.Models = append(merged.Models, cfg.Models...)
		merged.Settings = append(merged.Settings, cfg.Settings...)
		merged.Solvers = append(merged.Solvers, cfg.Solvers...)
		merged.Searches = append(merged.Searches, cfg.Searches...)
		merged.Sweeps = append(merged.Sweeps, cfg.Sweeps...)
		merged.Publish = append(merged.Publish, cfg.Publish...)
	}

	model, err := l.translate(ctx, merged)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Case configuration loaded and translated into unified model.")
	return model, NewConverter(), nil
}

// decodeFile parses a single HCL file into the case file schema.
func (l *Loader) decodeFile(ctx context.Context, path string) (*schema.CaseFile, error) {
	file, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, diags
	}
	cfg := &schema.CaseFile{}
	if diags := gohcl.DecodeBody(file.Body, nil, cfg); diags.HasErrors() {
		return nil, diags
	}
	ctxlog.FromContext(ctx).Debug("Decoded case file.", "path", path,
		"models", len(cfg.Models), "searches", len(cfg.Searches), "sweeps", len(cfg.Sweeps))
	return cfg, nil
}

// resolveCasePath expands a path into the list of .hcl files it names: the
// file itself, or every .hcl file under a directory, sorted for determinism.
func resolveCasePath(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".hcl") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
