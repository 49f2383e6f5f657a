package config

// Manifest filenames in discovery order.
const (
	YAMLFilename = "cleardep.yaml"
	TOMLFilename = "cleardep.toml"
	HCLFilename  = "cleardep.hcl"
)

// SupportedVersion is the only manifest schema version the loader accepts.
const SupportedVersion = "1"

// Manifestfile is the decoded form of a cleardep.yaml or cleardep.toml file.
type Manifestfile struct {
	Version     string             `yaml:"version"      toml:"version"`
	State       string             `yaml:"state"        toml:"state"`
	Stamper     string             `yaml:"stamper"      toml:"stamper"`
	ToolVersion string             `yaml:"tool_version" toml:"tool_version"`
	Mode        string             `yaml:"mode"         toml:"mode"`
	Units       map[string]UnitDTO `yaml:"units"        toml:"units"`
}

// UnitDTO is one unit declaration.
type UnitDTO struct {
	Kind            string            `yaml:"kind"             toml:"kind"`
	Sources         []string          `yaml:"sources"          toml:"sources"`
	DependsOn       []string          `yaml:"depends_on"       toml:"depends_on"`
	External        []string          `yaml:"external"         toml:"external"`
	Generated       []string          `yaml:"generated"        toml:"generated"`
	Interface       []string          `yaml:"interface"        toml:"interface"`
	Cmd             []string          `yaml:"cmd"              toml:"cmd"`
	Env             map[string]string `yaml:"env"              toml:"env"`
	SynthesizedFrom SynthesisDTO      `yaml:"synthesized_from" toml:"synthesized_from"`
}

// SynthesisDTO names the units and files a synthesized unit is derived from.
type SynthesisDTO struct {
	Units []string `yaml:"units" toml:"units"`
	Files []string `yaml:"files" toml:"files"`
}

// hclManifestfile mirrors Manifestfile with units declared as labeled blocks:
//
//	unit "core" {
//	  sources = ["core/*.src"]
//	}
type hclManifestfile struct {
	Version     string     `hcl:"version"`
	State       string     `hcl:"state,optional"`
	Stamper     string     `hcl:"stamper,optional"`
	ToolVersion string     `hcl:"tool_version,optional"`
	Mode        string     `hcl:"mode,optional"`
	Units       []*hclUnit `hcl:"unit,block"`
}

type hclUnit struct {
	Name            string            `hcl:"name,label"`
	Kind            string            `hcl:"kind,optional"`
	Sources         []string          `hcl:"sources"`
	DependsOn       []string          `hcl:"depends_on,optional"`
	External        []string          `hcl:"external,optional"`
	Generated       []string          `hcl:"generated,optional"`
	Interface       []string          `hcl:"interface,optional"`
	Cmd             []string          `hcl:"cmd,optional"`
	Env             map[string]string `hcl:"env,optional"`
	SynthesizedFrom *hclSynthesis     `hcl:"synthesized_from,block"`
}

type hclSynthesis struct {
	Units []string `hcl:"units,optional"`
	Files []string `hcl:"files,optional"`
}
