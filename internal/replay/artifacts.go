package replay

import (
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/quantfold/shadowbench/config"
	"github.com/quantfold/shadowbench/errs"
)

// WriteConfigSnapshot records the effective configuration of a run as an
// indented JSON artifact named after the run id, and returns the file path.
func WriteConfigSnapshot(dir string, cfg config.Settings) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errs.New("replay", errs.CodeUnavailable,
			errs.WithMessage("create artifacts dir "+dir), errs.WithCause(err))
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", errs.New("replay", errs.CodeInvalid,
			errs.WithMessage("encode config snapshot"), errs.WithCause(err))
	}
	path := filepath.Join(dir, cfg.Run.RunID+"_config.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", errs.New("replay", errs.CodeUnavailable,
			errs.WithMessage("write config snapshot "+path), errs.WithCause(err))
	}
	return path, nil
}
