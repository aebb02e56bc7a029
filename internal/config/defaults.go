package config

const (
	defaultUploadDir            = "~/.local/share/reelsplit/uploads"
	defaultOutputDir            = "~/.local/share/reelsplit/outputs"
	defaultLogDir               = "~/.local/share/reelsplit/logs"
	defaultAPIBind              = "127.0.0.1:5000"
	defaultMaxUploadMiB         = 500
	defaultSplitDuration        = 30
	defaultSegmentExtension     = "mp4"
	defaultMaxAgeMinutes        = 60
	defaultSweepIntervalMinutes = 15
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

func defaultAllowedExtensions() []string {
	return []string{"mp4", "mov", "avi", "mkv", "webm"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			UploadDir: defaultUploadDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			APIBind:   defaultAPIBind,
		},
		Server: Server{
			MaxUploadMiB:      defaultMaxUploadMiB,
			AllowedExtensions: defaultAllowedExtensions(),
		},
		Split: Split{
			DefaultDuration:  defaultSplitDuration,
			SegmentExtension: defaultSegmentExtension,
		},
		Retention: Retention{
			MaxAgeMinutes:        defaultMaxAgeMinutes,
			SweepIntervalMinutes: defaultSweepIntervalMinutes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
