package unit

import (
	"maps"

	"github.com/vmihailenco/msgpack/v5"
	"go.trai.ch/cleardep/internal/core/domain"
	"go.trai.ch/cleardep/internal/core/persist"
	"go.trai.ch/zerr"
)

type unitRecord struct {
	Kind         string                  `msgpack:"kind"`
	TargetDir    string                  `msgpack:"target_dir"`
	Sources      map[string]domain.Stamp `msgpack:"sources"`
	Generated    map[string]domain.Stamp `msgpack:"generated"`
	External     map[string]domain.Stamp `msgpack:"external"`
	Interface    domain.Fingerprint      `msgpack:"interface"`
	Dependencies []edgeRecord            `msgpack:"deps"`
	Circular     []edgeRecord            `msgpack:"circular_deps"`
	Synthesizer  *synthesizerRecord      `msgpack:"synthesizer,omitempty"`
	Attributes   map[string]string       `msgpack:"attributes,omitempty"`
}

type edgeRecord struct {
	Kind      string             `msgpack:"kind"`
	Path      string             `msgpack:"path"`
	Interface domain.Fingerprint `msgpack:"interface"`
}

type synthesizerRecord struct {
	Generators []edgeRecord            `msgpack:"generators"`
	Files      map[string]domain.Stamp `msgpack:"files"`
}

// WriteEntity implements persist.Entity.
func (u *Unit) WriteEntity(enc *msgpack.Encoder) error {
	rec := unitRecord{
		Kind:      u.Kind().Tag(),
		TargetDir: u.targetDir,
		Sources:   u.sourceArtifacts,
		Generated: u.generatedFiles,
		External:  u.externalFiles,
		Interface: u.interfaceHash,
	}
	if len(u.attributes) > 0 {
		rec.Attributes = u.attributes
	}

	var err error
	if rec.Dependencies, err = edgeRecords(u.ModuleDependencies(), u.moduleDeps); err != nil {
		return err
	}
	if rec.Circular, err = edgeRecords(u.CircularModuleDependencies(), u.circularDeps); err != nil {
		return err
	}
	if u.synthesizer != nil {
		generators, err := edgeRecords(u.synthesizer.Generators(), nil)
		if err != nil {
			return err
		}
		rec.Synthesizer = &synthesizerRecord{Generators: generators, Files: u.synthesizer.files}
	}

	if err := enc.Encode(&rec); err != nil {
		return zerr.Wrap(err, "failed to encode unit")
	}
	return nil
}

func edgeRecords(deps []*Unit, recorded map[*Unit]domain.Fingerprint) ([]edgeRecord, error) {
	records := make([]edgeRecord, 0, len(deps))
	for _, dep := range deps {
		if dep.PersistentPath() == "" {
			return nil, zerr.With(zerr.Wrap(domain.ErrUnitNotPersistable, "encode dependency"), "dependency", dep.seq)
		}
		records = append(records, edgeRecord{
			Kind:      dep.Kind().Tag(),
			Path:      dep.PersistentPath(),
			Interface: recorded[dep],
		})
	}
	return records, nil
}

// ReadEntity implements persist.Entity.
func (u *Unit) ReadEntity(l *persist.Loader, dec *msgpack.Decoder) error {
	var rec unitRecord
	if err := dec.Decode(&rec); err != nil {
		return zerr.Wrap(err, "failed to decode unit")
	}

	kind, err := LookupKind(rec.Kind)
	if err != nil {
		return err
	}

	// Scalar content is set before dependencies are loaded, since a dependency may refer back
	// to u while u is still being decoded.
	u.Init()
	u.kind = kind
	u.targetDir = rec.TargetDir
	u.interfaceHash = rec.Interface
	maps.Copy(u.sourceArtifacts, rec.Sources)
	maps.Copy(u.generatedFiles, rec.Generated)
	maps.Copy(u.externalFiles, rec.External)
	maps.Copy(u.attributes, rec.Attributes)

	if err := loadEdges(l, rec.Dependencies, u.moduleDeps); err != nil {
		return err
	}
	if err := loadEdges(l, rec.Circular, u.circularDeps); err != nil {
		return err
	}

	if rec.Synthesizer != nil {
		generators := make(map[*Unit]domain.Fingerprint, len(rec.Synthesizer.Generators))
		if err := loadEdges(l, rec.Synthesizer.Generators, generators); err != nil {
			return err
		}
		u.synthesizer = &Synthesizer{
			generators: make(map[*Unit]struct{}, len(generators)),
			files:      make(map[string]domain.Stamp, len(rec.Synthesizer.Files)),
		}
		for g := range generators {
			u.synthesizer.generators[g] = struct{}{}
		}
		maps.Copy(u.synthesizer.files, rec.Synthesizer.Files)
	}
	return nil
}

func loadEdges(l *persist.Loader, records []edgeRecord, into map[*Unit]domain.Fingerprint) error {
	for _, r := range records {
		if _, err := LookupKind(r.Kind); err != nil {
			return err
		}
		dep, err := persist.Load[Unit](l, r.Path)
		if err != nil {
			wrapped := zerr.With(zerr.Wrap(domain.ErrMissingPersistedDependency, "load dependency"), "dependency", r.Path)
			return zerr.With(wrapped, "cause", err.Error())
		}
		into[dep] = r.Interface
	}
	return nil
}
