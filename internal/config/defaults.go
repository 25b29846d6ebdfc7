package config

const (
	defaultWorkDir         = "~/.local/share/mediavault/work"
	defaultLogDir          = "~/.local/share/mediavault/logs"
	defaultToolCacheDir    = "~/.cache/mediavault/tools"
	defaultAPIBind         = "127.0.0.1:7591"
	defaultLogFormat       = "text"
	defaultLogLevel        = "info"
	defaultToolDownloadURL = "https://github.com/yt-dlp/yt-dlp/releases/latest/download/yt-dlp"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:      defaultWorkDir,
			LogDir:       defaultLogDir,
			ToolCacheDir: defaultToolCacheDir,
			APIBind:      defaultAPIBind,
		},
		Tool: Tool{
			DownloadURL: defaultToolDownloadURL,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
