package common

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and logs the resolved endpoints
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.PrintSimple("TagView", GetVersion())

	logger.Info().
		Str("version", GetFullVersion()).
		Str("environment", config.Environment).
		Str("content_root", config.Content.Root).
		Str("tags_file", config.Content.TagsFile).
		Msg("TagView starting")
}
