package project

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/snowduck-labs/snowduck/internal/catalog"
	"github.com/snowduck-labs/snowduck/internal/config"
	"github.com/snowduck-labs/snowduck/internal/engine"
	"github.com/snowduck-labs/snowduck/pkg/core"
)

// Loader discovers project files on disk and registers them in a
// catalog.
type Loader struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewLoader creates a loader for the given project configuration.
func NewLoader(cfg *config.Config, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{cfg: cfg, logger: logger}
}

// LoadError records one file that could not be loaded. Loading continues
// past it so a single broken file never hides the rest of the project.
type LoadError struct {
	Path    string
	Message string
}

// Result summarizes what a Load pass found.
type Result struct {
	Models    int
	Sources   int
	Seeds     int
	Snapshots int
	Tests     int
	Errors    []LoadError
}

// Load walks the project directories and registers everything found.
// Parse failures are collected in the result, not returned as errors.
func (l *Loader) Load(reg *catalog.Registry) (*Result, error) {
	res := &Result{}

	if err := l.loadModels(reg, res); err != nil {
		return nil, err
	}
	if err := l.loadSchemas(reg, res); err != nil {
		return nil, err
	}
	if err := l.loadSeeds(reg, res); err != nil {
		return nil, err
	}
	if err := l.loadSnapshots(reg, res); err != nil {
		return nil, err
	}
	if err := l.loadSingularTests(reg, res); err != nil {
		return nil, err
	}

	l.logger.Info("project loaded",
		"models", res.Models, "sources", res.Sources, "seeds", res.Seeds,
		"snapshots", res.Snapshots, "tests", res.Tests, "errors", len(res.Errors))
	return res, nil
}

// walkSuffix walks dir and calls fn for every regular file with the
// given suffix. A missing directory is not an error.
func (l *Loader) walkSuffix(dir string, suffixes []string, fn func(path string) error) error {
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		l.logger.Debug("directory not found, skipping", "dir", dir)
		return nil
	}

	return filepath.Walk(dir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			return nil
		}
		for _, suffix := range suffixes {
			if strings.HasSuffix(info.Name(), suffix) {
				return fn(path)
			}
		}
		return nil
	})
}

func (l *Loader) loadModels(reg *catalog.Registry, res *Result) error {
	target := l.cfg.Target
	return l.walkSuffix(l.cfg.ModelsDir, []string{".sql"}, func(path string) error {
		content, err := os.ReadFile(path)
		if err != nil {
			res.Errors = append(res.Errors, LoadError{Path: path, Message: err.Error()})
			return nil
		}

		name := strings.TrimSuffix(filepath.Base(path), ".sql")
		reg.RegisterModel(&core.Model{
			UniqueID: "model." + name,
			Name:     name,
			Database: target.Database,
			Schema:   target.Schema,
			RawSQL:   string(content),
		})
		res.Models++
		l.logger.Debug("loaded model", "name", name, "path", path)
		return nil
	})
}

func (l *Loader) loadSchemas(reg *catalog.Registry, res *Result) error {
	return l.walkSuffix(l.cfg.ModelsDir, []string{".yml", ".yaml"}, func(path string) error {
		content, err := os.ReadFile(path)
		if err != nil {
			res.Errors = append(res.Errors, LoadError{Path: path, Message: err.Error()})
			return nil
		}

		f, err := parseSchemaFile(content)
		if err != nil {
			res.Errors = append(res.Errors, LoadError{Path: path, Message: err.Error()})
			return nil
		}

		for i := range f.Sources {
			src, err := f.Sources[i].toSource(l.cfg.Target.Database)
			if err != nil {
				res.Errors = append(res.Errors, LoadError{Path: path, Message: err.Error()})
				continue
			}
			reg.RegisterSource(src)
			res.Sources++
		}

		for _, def := range f.Models {
			l.applyModelSchema(reg, res, path, def)
		}
		return nil
	})
}

// applyModelSchema attaches documentation to a registered model and
// generates its column tests.
func (l *Loader) applyModelSchema(reg *catalog.Registry, res *Result, path string, def modelDef) {
	model, ok := reg.Model(def.Name)
	if !ok {
		res.Errors = append(res.Errors, LoadError{
			Path:    path,
			Message: fmt.Sprintf("schema entry for unknown model %q", def.Name),
		})
		return
	}
	if def.Description != "" {
		model.Description = def.Description
	}

	for _, col := range def.Columns {
		for _, td := range col.Tests {
			severity, err := parseSeverity(td.Severity)
			if err != nil {
				res.Errors = append(res.Errors, LoadError{Path: path, Message: err.Error()})
				continue
			}

			test, err := engine.BuildSchemaTest(td.Kind, def.Name, col.Name, engine.SchemaTestParams{
				Values:   td.Values,
				To:       relationshipTarget(td.To),
				ToColumn: td.Field,
				Severity: severity,
			})
			if err != nil {
				res.Errors = append(res.Errors, LoadError{Path: path, Message: err.Error()})
				continue
			}
			reg.RegisterTest(test)
			res.Tests++
		}
	}
}

func parseSeverity(s string) (core.Severity, error) {
	switch strings.ToLower(s) {
	case "":
		return "", nil
	case "error":
		return core.SeverityError, nil
	case "warn":
		return core.SeverityWarn, nil
	default:
		return "", fmt.Errorf("unknown severity %q", s)
	}
}

func (l *Loader) loadSeeds(reg *catalog.Registry, res *Result) error {
	target := l.cfg.Target
	return l.walkSuffix(l.cfg.SeedsDir, []string{".csv"}, func(path string) error {
		name := strings.TrimSuffix(filepath.Base(path), ".csv")
		reg.RegisterSeed(&core.Seed{
			Name:     name,
			Database: target.Database,
			Schema:   target.Schema,
			FilePath: path,
		})
		res.Seeds++
		return nil
	})
}

func (l *Loader) loadSnapshots(reg *catalog.Registry, res *Result) error {
	return l.walkSuffix(l.cfg.SnapshotsDir, []string{".sql"}, func(path string) error {
		content, err := os.ReadFile(path)
		if err != nil {
			res.Errors = append(res.Errors, LoadError{Path: path, Message: err.Error()})
			return nil
		}

		name := strings.TrimSuffix(filepath.Base(path), ".sql")
		snap, err := parseSnapshotFile(string(content), name, l.cfg.Target.Database)
		if err != nil {
			res.Errors = append(res.Errors, LoadError{Path: path, Message: err.Error()})
			return nil
		}
		reg.RegisterSnapshot(snap)
		res.Snapshots++
		return nil
	})
}

func (l *Loader) loadSingularTests(reg *catalog.Registry, res *Result) error {
	return l.walkSuffix(l.cfg.TestsDir, []string{".sql"}, func(path string) error {
		content, err := os.ReadFile(path)
		if err != nil {
			res.Errors = append(res.Errors, LoadError{Path: path, Message: err.Error()})
			return nil
		}

		name := strings.TrimSuffix(filepath.Base(path), ".sql")
		test, err := parseSingularTestFile(string(content), name)
		if err != nil {
			res.Errors = append(res.Errors, LoadError{Path: path, Message: err.Error()})
			return nil
		}
		reg.RegisterTest(test)
		res.Tests++
		return nil
	})
}
