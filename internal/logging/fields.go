package logging

// Field names for structured log entries.
const (
	FieldError      = "error"
	FieldStack      = "stack"
	FieldPath       = "path"
	FieldFiles      = "files"
	FieldOutput     = "output"
	FieldChanged    = "changed"
	FieldWorkingDir = "working_dir"
	FieldConfig     = "config"
	FieldFormat     = "format"
	FieldJobs       = "jobs"
	FieldPasses     = "passes"
	FieldElapsed    = "elapsed"

	// Document fields.
	FieldKey    = "key"
	FieldBytes  = "bytes"
	FieldLines  = "lines"
	FieldTotal  = "total"
	FieldBlocks = "blocks"
	FieldDepth  = "depth"
	FieldState  = "state"
	FieldBatch  = "batch"
	FieldExtent = "extent"

	// Cache fields.
	FieldEntries   = "entries"
	FieldHits      = "hits"
	FieldMisses    = "misses"
	FieldEvictions = "evictions"
	FieldEvicted   = "evicted"
	FieldExpired   = "expired"
	FieldMemory    = "memory"
	FieldCeiling   = "ceiling"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
