package lexicon

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Source is the lexicon document layout.
type Source struct {
	HighRisk       []string `json:"high_risk" yaml:"high_risk"`
	MediumRisk     []string `json:"medium_risk" yaml:"medium_risk"`
	LowRisk        []string `json:"low_risk" yaml:"low_risk"`
	PositivePoints []string `json:"positive_points" yaml:"positive_points"`
}

// LoadError reports a missing or malformed lexicon source.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("lexicon: load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load reads a lexicon document from path. Files ending in .yaml or .yml are
// decoded as YAML, anything else as JSON. Failures are returned as *LoadError.
func Load(path string) (*Lexicon, error) {
	if path == "" {
		return nil, &LoadError{Path: path, Err: eris.New("no lexicon path configured")}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: eris.Wrap(err, "read file")}
	}

	format := "json"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = "yaml"
	}

	lex, err := Parse(data, format)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return lex, nil
}

// Parse decodes a lexicon document in the given format ("json" or "yaml").
func Parse(data []byte, format string) (*Lexicon, error) {
	var src Source
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, &src); err != nil {
			return nil, eris.Wrap(err, "decode yaml")
		}
	case "json":
		if err := json.Unmarshal(data, &src); err != nil {
			return nil, eris.Wrap(err, "decode json")
		}
	default:
		return nil, eris.Errorf("unsupported lexicon format %q", format)
	}
	return New(src.HighRisk, src.MediumRisk, src.LowRisk, src.PositivePoints), nil
}

// LoadOrEmpty loads the lexicon at path, substituting an empty lexicon when
// the source is unavailable. Keyword features then contribute zero signal.
func LoadOrEmpty(path string) *Lexicon {
	lex, err := Load(path)
	if err != nil {
		zap.L().Error("lexicon: unavailable, keyword features disabled",
			zap.String("path", path),
			zap.Error(err),
		)
		return Empty()
	}
	zap.L().Info("lexicon: loaded",
		zap.String("path", path),
		zap.Int("high_risk", lex.Size(HighRisk)),
		zap.Int("medium_risk", lex.Size(MediumRisk)),
		zap.Int("low_risk", lex.Size(LowRisk)),
		zap.Int("positive", lex.Size(Positive)),
	)
	return lex
}
