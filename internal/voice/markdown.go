package voice

import (
	"os/exec"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

var (
	mdEmphasis = regexp.MustCompile("(\\*\\*|\\*|~~|`)(\\S(?:.*?\\S)?)(\\*\\*|\\*|~~|`)")
	mdLink     = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	mdHeading  = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	mdBullet   = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
)

// StripMarkdown removes markdown formatting so it is not read aloud. It uses
// mdstrip when installed and a small built-in pass otherwise.
func StripMarkdown(text string) string {
	if text == "" {
		return text
	}

	if isCommandAvailable("mdstrip") {
		cmd := exec.Command("mdstrip")
		cmd.Stdin = strings.NewReader(text)

		output, err := cmd.Output()
		if err == nil {
			log.Debug().Msg("Stripped markdown formatting")
			return strings.TrimSpace(string(output))
		}
		log.Warn().Err(err).Msg("mdstrip failed, using built-in stripping")
	}

	out := mdLink.ReplaceAllString(text, "$1")
	out = mdHeading.ReplaceAllString(out, "")
	out = mdBullet.ReplaceAllString(out, "")
	out = mdEmphasis.ReplaceAllStringFunc(out, func(m string) string {
		parts := mdEmphasis.FindStringSubmatch(m)
		if parts[1] != parts[3] {
			return m
		}
		return parts[2]
	})
	return out
}
