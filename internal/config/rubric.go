package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/kitbuilder587/essayblitz/internal/domain"
)

var ErrUnsupportedRubricFile = errors.New("rubric file must be .toml, .yaml or .yml")

// rubricFile - то, что можно переопределить файлом. Незаданные поля
// остаются из base.
type rubricFile struct {
	MinWords   *int     `toml:"min_words" yaml:"min_words"`
	Categories []string `toml:"categories" yaml:"categories"`
	Format     string   `toml:"format" yaml:"format"`
	Thresholds struct {
		Good *float64 `toml:"good" yaml:"good"`
		OK   *float64 `toml:"ok" yaml:"ok"`
	} `toml:"thresholds" yaml:"thresholds"`
}

func LoadRubricFile(path string, base domain.Rubric) (domain.Rubric, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read rubric file: %w", err)
	}
	return ParseRubric(data, filepath.Ext(path), base)
}

// ParseRubric накладывает содержимое файла на base. ext - расширение с точкой.
func ParseRubric(data []byte, ext string, base domain.Rubric) (domain.Rubric, error) {
	var rf rubricFile

	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.Unmarshal(data, &rf); err != nil {
			return base, fmt.Errorf("parse rubric toml: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &rf); err != nil {
			return base, fmt.Errorf("parse rubric yaml: %w", err)
		}
	default:
		return base, ErrUnsupportedRubricFile
	}

	out := base
	out.Categories = append([]string(nil), base.Categories...)

	if rf.MinWords != nil {
		out.MinWords = *rf.MinWords
	}
	if len(rf.Categories) > 0 {
		out.Categories = rf.Categories
	}
	if rf.Thresholds.Good != nil {
		out.Thresholds.Good = *rf.Thresholds.Good
	}
	if rf.Thresholds.OK != nil {
		out.Thresholds.OK = *rf.Thresholds.OK
	}
	if rf.Format != "" {
		f, err := domain.ParseFormatKind(rf.Format)
		if err != nil {
			return base, fmt.Errorf("rubric format %q: %w", rf.Format, err)
		}
		out.Format = f
	}

	return out, nil
}
