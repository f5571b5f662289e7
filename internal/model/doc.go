package model

// Package model defines domain data structures used across the bot: link
// tasks, per-link outcomes, and the metadata records produced by the
// extraction engine. Metadata structures carry JSON tags matching the
// engine's single-JSON dump format.
