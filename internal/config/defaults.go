package config

const (
	// ImageEffectsModel posts the asset URL as a bare string to the image endpoint.
	ImageEffectsModel = "image-effects"
	// VideoEffectsModel posts the asset URL as a one-element array to the video endpoint.
	VideoEffectsModel = "video-effects"
)

const (
	defaultStateDir              = "~/.local/share/festive"
	defaultOutputDir             = "~/Pictures/festive"
	defaultLogDir                = "~/.local/share/festive/logs"
	defaultUploadURL             = "https://api.chromastudio.ai/get-emd-upload-url"
	defaultImageGenURL           = "https://api.chromastudio.ai/image-gen"
	defaultVideoGenURL           = "https://api.chromastudio.ai/video-gen"
	defaultCDNURL                = "https://contents.maxstudio.ai"
	defaultProxyURL              = "https://api.chromastudio.ai/download-proxy"
	defaultUserAgent             = "festive/0.1.0"
	defaultRequestTimeoutSeconds = 30
	defaultEffectID              = "confettitophoto"
	defaultModel                 = ImageEffectsModel
	defaultUserID                = "DObRu1vyStbUynoQmTcHBlhs55z2"
	defaultPollIntervalSeconds   = 2
	defaultPollMaxAttempts       = 60
	defaultFilenamePrefix        = "festive"
	defaultServerBind            = "127.0.0.1:7488"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogRetentionDays      = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir:  defaultStateDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		API: API{
			UploadURL:             defaultUploadURL,
			ImageGenURL:           defaultImageGenURL,
			VideoGenURL:           defaultVideoGenURL,
			CDNURL:                defaultCDNURL,
			ProxyURL:              defaultProxyURL,
			UserAgent:             defaultUserAgent,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		},
		Job: Job{
			EffectID:        defaultEffectID,
			Model:           defaultModel,
			ToolType:        defaultModel,
			UserID:          defaultUserID,
			RemoveWatermark: true,
			IsPrivate:       true,
		},
		Polling: Polling{
			IntervalSeconds: defaultPollIntervalSeconds,
			MaxAttempts:     defaultPollMaxAttempts,
		},
		Download: Download{
			FilenamePrefix: defaultFilenamePrefix,
		},
		Server: Server{
			Bind: defaultServerBind,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
