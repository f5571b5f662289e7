package engine

// Package engine wraps the yt-dlp binary (via github.com/lrstanley/go-ytdlp)
// behind three operations the bot needs: a flat metadata probe, a full
// download, and a format-listing query. Engine failures are re-expressed
// as a tagged Error so callers classify with one switch instead of
// chained text matching.
