// Package ytdlp wraps the external yt-dlp retrieval tool: it spawns the
// process for one item, streams progress from its output, and resolves the
// file the tool actually produced.
package ytdlp
