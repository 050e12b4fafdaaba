package ir

// Version constants for stored descriptions and the engine.
const (
	// IRVersion is the description schema version.
	IRVersion = "1"

	// EngineVersion is the turing engine version.
	EngineVersion = "0.1.0"
)
