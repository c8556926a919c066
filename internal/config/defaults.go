package config

const (
	defaultConfigPath    = "~/.config/chataudio/config.toml"
	defaultDatabasePath  = "~/Library/Messages/chat.db"
	defaultMIMEPrefix    = "audio/"
	defaultTimestampUnit = "auto"
	defaultOutputDir     = "./chat-audio"
	defaultWorkers       = 1
	defaultManifestName  = "audio_files.json"
	defaultURLPrefix     = "/"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

var defaultManifestExtensions = []string{"m4a", "mp3", "wav", "ogg", "caf"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	exts := make([]string, len(defaultManifestExtensions))
	copy(exts, defaultManifestExtensions)
	return Config{
		Source: Source{
			DatabasePath:  defaultDatabasePath,
			MIMEPrefix:    defaultMIMEPrefix,
			TimestampUnit: defaultTimestampUnit,
		},
		Export: Export{
			OutputDir: defaultOutputDir,
			Workers:   defaultWorkers,
		},
		Manifest: Manifest{
			URLPrefix:  defaultURLPrefix,
			Extensions: exts,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
