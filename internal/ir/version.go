package ir

// Version constants for the journal schema and engine.
const (
	// JournalVersion is the change journal row format version.
	JournalVersion = "1"

	// EngineVersion is the semmeta engine version.
	EngineVersion = "0.1.0"
)
