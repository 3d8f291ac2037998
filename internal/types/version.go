package types

// Version is the canonical project version, shared across the CLI
// binary and its embedded components.
const Version = "0.1.0"
