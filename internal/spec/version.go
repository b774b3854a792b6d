package spec

// SchemaVersion is the spec document schema version written by CreateSpec.
const SchemaVersion = "1.0"
