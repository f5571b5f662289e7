package bot

// Package bot implements the chat-facing pipeline: per-link download
// orchestration, outcome notification routing, message handling with
// sequential link processing, and the Telegram transport adapter.
