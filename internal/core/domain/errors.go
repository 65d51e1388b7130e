package domain

import "go.trai.ch/zerr"

var (
	// ErrTargetAlreadyExists is returned when attempting to add a target with a name that already exists.
	ErrTargetAlreadyExists = zerr.New("target already exists")

	// ErrUnknownDependency is returned when a target references a dependency that doesn't exist in the graph.
	ErrUnknownDependency = zerr.New("unknown dependency")

	// ErrCycleDetected is returned when a cycle is detected in the target dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrTargetNotFound is returned when a requested target is not found in the graph.
	ErrTargetNotFound = zerr.New("target not found")

	// ErrNoTargetsSpecified is returned when a build is requested without any target names.
	ErrNoTargetsSpecified = zerr.New("no targets specified")

	// ErrConfigInvalid is returned when the configuration file is missing or malformed.
	ErrConfigInvalid = zerr.New("invalid configuration")

	// ErrBuildFailed is returned by the engine when any target in the active set ended Failed.
	ErrBuildFailed = zerr.New("build failed")

	// ErrServiceSpawnFailed is returned when a service command could not be started.
	ErrServiceSpawnFailed = zerr.New("service spawn failed")

	// ErrWatchFailed is returned when the filesystem watcher cannot be started.
	ErrWatchFailed = zerr.New("file watch failed")
)
