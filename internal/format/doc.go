package format

// Package format turns the engine's raw, heterogeneous format list into a
// normalized catalog and renders it as a fixed-width text table suitable
// for a monospace chat message.
