package clipfmt

import (
	"embed"
	"strings"
)

const (
	MsgRootShort = "Keep clipboard text normalized"
	MsgBanner    = "clipfmt v%s\n"

	MsgFlagVerbose = "Increase verbosity (-v DEBUG, -vv TRACE)"

	MsgErrPaths     = "failed to resolve directories: %w"
	MsgErrDefaults  = "failed to create default config: %w"
	MsgErrLoadRules = "failed to load config: %w"
	MsgErrMonitor   = "failed to start: %w"
)

var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw) + "\n"
)

//go:embed topics/*.md
var helpTopics embed.FS
