// Package config loads the cleardep project manifest.
package config

import (
	"errors"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"go.trai.ch/cleardep/internal/core/domain"
	"go.trai.ch/cleardep/internal/core/ports"
	"go.trai.ch/cleardep/internal/core/unit"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader. It searches for a manifest in the working directory
// and its parents.
type Loader struct {
	logger ports.Logger
}

// NewLoader creates a new Loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load finds the nearest manifest at or above cwd, decodes it and validates it.
func (l *Loader) Load(cwd string) (*domain.Manifest, error) {
	path, err := Find(cwd)
	if err != nil {
		return nil, err
	}
	if l.logger != nil {
		l.logger.Info("using manifest " + path)
	}
	return LoadFile(path)
}

// Find returns the path of the nearest manifest at or above dir.
func Find(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", zerr.Wrap(err, "failed to resolve working directory")
	}

	for current := abs; ; {
		for _, name := range []string{YAMLFilename, TOMLFilename, HCLFilename} {
			candidate := filepath.Join(current, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "find manifest"), "dir", abs)
}

// LoadFile decodes the manifest at path according to its extension. The manifest root is the
// directory containing the file.
func LoadFile(path string) (*domain.Manifest, error) {
	var (
		file Manifestfile
		err  error
	)
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		file, err = decodeYAML(path)
	case ".toml":
		file, err = decodeTOML(path)
	case ".hcl":
		file, err = decodeHCL(path)
	default:
		err = zerr.Wrap(domain.ErrInvalidConfig, "unsupported manifest format")
	}
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}

	m, err := toManifest(&file, filepath.Dir(path))
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return m, nil
}

func decodeYAML(path string) (Manifestfile, error) {
	var file Manifestfile
	data, err := os.ReadFile(path) //nolint:gosec // path is discovered from the working directory
	if err != nil {
		return file, zerr.Wrap(err, "failed to read manifest")
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return file, zerr.Wrap(errors.Join(domain.ErrInvalidConfig, err), "failed to parse manifest")
	}
	return file, nil
}

func decodeTOML(path string) (Manifestfile, error) {
	var file Manifestfile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return file, zerr.Wrap(errors.Join(domain.ErrInvalidConfig, err), "failed to parse manifest")
	}
	return file, nil
}

func decodeHCL(path string) (Manifestfile, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return Manifestfile{}, zerr.Wrap(errors.Join(domain.ErrInvalidConfig, diags), "failed to parse manifest")
	}

	var decoded hclManifestfile
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &decoded); diags.HasErrors() {
		return Manifestfile{}, zerr.Wrap(errors.Join(domain.ErrInvalidConfig, diags), "failed to decode manifest")
	}

	file := Manifestfile{
		Version:     decoded.Version,
		State:       decoded.State,
		Stamper:     decoded.Stamper,
		ToolVersion: decoded.ToolVersion,
		Mode:        decoded.Mode,
		Units:       make(map[string]UnitDTO, len(decoded.Units)),
	}
	for _, u := range decoded.Units {
		if _, dup := file.Units[u.Name]; dup {
			return Manifestfile{}, zerr.With(zerr.Wrap(domain.ErrUnitAlreadyExists, "decode manifest"), "unit", u.Name)
		}
		dto := UnitDTO{
			Kind:      u.Kind,
			Sources:   u.Sources,
			DependsOn: u.DependsOn,
			External:  u.External,
			Generated: u.Generated,
			Interface: u.Interface,
			Cmd:       u.Cmd,
			Env:       u.Env,
		}
		if u.SynthesizedFrom != nil {
			dto.SynthesizedFrom = SynthesisDTO{Units: u.SynthesizedFrom.Units, Files: u.SynthesizedFrom.Files}
		}
		file.Units[u.Name] = dto
	}
	return file, nil
}

func toManifest(file *Manifestfile, root string) (*domain.Manifest, error) {
	if file.Version != SupportedVersion {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "unsupported manifest version"), "version", file.Version)
	}

	m := domain.NewManifest(root)
	if file.State != "" {
		m.StateDir = file.State
	}
	m.ToolVersion = file.ToolVersion

	m.Stamper = file.Stamper
	if m.Stamper == "" {
		m.Stamper = "content"
	}
	if m.Stamper != "content" && m.Stamper != "time" {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "unknown stamper"), "stamper", m.Stamper)
	}

	m.Mode = domain.RebuildInconsistent
	if file.Mode != "" {
		mode, err := domain.ParseScheduleMode(file.Mode)
		if err != nil {
			return nil, err
		}
		m.Mode = mode
	}

	for _, name := range slices.Sorted(maps.Keys(file.Units)) {
		dto := file.Units[name]
		if _, err := unit.LookupKind(dto.Kind); err != nil {
			return nil, zerr.With(err, "unit", name)
		}
		iface := dto.Interface
		if len(iface) == 0 {
			iface = dto.Generated
		}
		spec := &domain.UnitSpec{
			Name:         domain.NewInternedString(name),
			Kind:         dto.Kind,
			Sources:      canonicalize(dto.Sources),
			Dependencies: domain.NewInternedStrings(canonicalize(dto.DependsOn)),
			External:     canonicalize(dto.External),
			Generated:    canonicalize(dto.Generated),
			Interface:    canonicalize(iface),
			Command:      dto.Cmd,
			Environment:  dto.Env,
			SynthesizedFrom: domain.Synthesis{
				Units: domain.NewInternedStrings(canonicalize(dto.SynthesizedFrom.Units)),
				Files: canonicalize(dto.SynthesizedFrom.Files),
			},
		}
		if err := m.AddUnit(spec); err != nil {
			return nil, err
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// canonicalize sorts and deduplicates strs.
func canonicalize(strs []string) []string {
	if len(strs) == 0 {
		return nil
	}
	sorted := slices.Clone(strs)
	slices.Sort(sorted)
	return slices.Compact(sorted)
}
