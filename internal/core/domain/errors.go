package domain

import "go.trai.ch/zerr"

var (
	// ErrUnitAlreadyExists is returned when a manifest declares the same unit name twice.
	ErrUnitAlreadyExists = zerr.New("unit already exists")

	// ErrMissingDependency is returned when a unit references a dependency that is not declared.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrUnitNotFound is returned when a requested unit is not declared in the manifest.
	ErrUnitNotFound = zerr.New("unit not found")

	// ErrInvalidConfig is returned when the project manifest fails validation.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrConfigNotFound is returned when no manifest is found in the directory tree.
	ErrConfigNotFound = zerr.New("could not find cleardep manifest")

	// ErrCycleDetected is returned when a cycle is found where the graph must be acyclic.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrEntityNotFound is returned when no persisted entity exists at a path.
	ErrEntityNotFound = zerr.New("persisted entity not found")

	// ErrEntityTypeMismatch is returned when a cached entity has a different type than requested.
	ErrEntityTypeMismatch = zerr.New("persisted entity has unexpected type")

	// ErrSchemaMismatch is returned when a persisted entity was written with another schema version.
	ErrSchemaMismatch = zerr.New("persisted entity schema mismatch")

	// ErrUnknownUnitKind is returned when a unit kind tag is not registered.
	ErrUnknownUnitKind = zerr.New("unknown unit kind")

	// ErrMissingPersistedDependency is returned when a persisted unit refers to a unit that cannot be read.
	ErrMissingPersistedDependency = zerr.New("required unit cannot be read")

	// ErrUnitNotPersistable is returned when a unit or one of its dependencies has no persistent path.
	ErrUnitNotPersistable = zerr.New("unit has no persistent path")

	// ErrDependencyNotFound is returned when an edge operation targets a dependency that is not recorded.
	ErrDependencyNotFound = zerr.New("dependency not recorded")

	// ErrNotCircular is returned when an edge recorded as circular does not close a cycle.
	ErrNotCircular = zerr.New("circular dependency does not close a cycle")

	// ErrIllegalBuildState is returned when a task is queried while one of its required tasks is unfinished.
	ErrIllegalBuildState = zerr.New("required task has not finished")

	// ErrDuplicateUnit is returned when a unit is assigned to more than one task.
	ErrDuplicateUnit = zerr.New("unit scheduled more than once")

	// ErrScheduleInvariant is returned when a build schedule does not cover a dependency that needs building.
	ErrScheduleInvariant = zerr.New("build schedule invariant violated")

	// ErrBuildFailed is returned when at least one task of a build failed.
	ErrBuildFailed = zerr.New("build failed")
)
