package view

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var videoTimePattern = regexp.MustCompile(`(?i)(\d+)(h|m|s)`) // YouTube t=1h2m3s

// VideoEmbed 描述项目详情页中嵌入的视频播放器。
type VideoEmbed struct {
	Platform string
	Source   string
	EmbedURL string
}

// ParseVideoEmbed 将项目的视频链接转换为可嵌入的播放器地址，支持 YouTube 与 Vimeo。
func ParseVideoEmbed(raw string) (VideoEmbed, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return VideoEmbed{}, false
	}
	trimmed = NormalizeVideoURL(trimmed)
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed == nil {
		return VideoEmbed{}, false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return VideoEmbed{}, false
	}
	if parsed.Hostname() == "" {
		return VideoEmbed{}, false
	}

	if embed, ok := parseYouTubeEmbed(parsed, trimmed); ok {
		return embed, true
	}
	if embed, ok := parseVimeoEmbed(parsed, trimmed); ok {
		return embed, true
	}
	return VideoEmbed{}, false
}

// NormalizeVideoURL 为省略协议的 YouTube/Vimeo 链接补上 https://，其余原样返回。
func NormalizeVideoURL(raw string) string {
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return raw
	}
	for _, prefix := range []string{"youtube.com/", "www.youtube.com/", "youtu.be/", "vimeo.com/", "player.vimeo.com/"} {
		if strings.HasPrefix(lower, prefix) {
			return "https://" + raw
		}
	}
	return raw
}

func parseYouTubeEmbed(u *url.URL, source string) (VideoEmbed, bool) {
	host := strings.ToLower(u.Hostname())
	var videoID string

	switch {
	case host == "youtu.be":
		videoID = strings.Trim(strings.TrimPrefix(u.Path, "/"), "/")
	case isHostOrSubdomain(host, "youtube.com"):
		path := strings.Trim(u.Path, "/")
		switch {
		case path == "watch":
			videoID = u.Query().Get("v")
		case strings.HasPrefix(path, "shorts/"):
			videoID = strings.TrimPrefix(path, "shorts/")
		case strings.HasPrefix(path, "embed/"):
			videoID = strings.TrimPrefix(path, "embed/")
		case strings.HasPrefix(path, "live/"):
			videoID = strings.TrimPrefix(path, "live/")
		}
	default:
		return VideoEmbed{}, false
	}
	if strings.Contains(videoID, "/") {
		videoID = strings.Split(videoID, "/")[0]
	}
	if videoID == "" {
		return VideoEmbed{}, false
	}

	values := url.Values{}
	values.Set("rel", "0")
	values.Set("modestbranding", "1")
	values.Set("playsinline", "1")
	if start := parseYouTubeStart(u); start > 0 {
		values.Set("start", strconv.Itoa(start))
	}

	return VideoEmbed{
		Platform: "youtube",
		Source:   source,
		EmbedURL: fmt.Sprintf("https://www.youtube-nocookie.com/embed/%s?%s", url.PathEscape(videoID), values.Encode()),
	}, true
}

func parseYouTubeStart(u *url.URL) int {
	query := u.Query()
	if value := query.Get("start"); value != "" {
		return parseYouTubeTime(value)
	}
	if value := query.Get("t"); value != "" {
		return parseYouTubeTime(value)
	}
	return 0
}

func parseYouTubeTime(value string) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(trimmed); err == nil {
		if seconds > 0 {
			return seconds
		}
		return 0
	}

	total := 0
	for _, match := range videoTimePattern.FindAllStringSubmatch(trimmed, -1) {
		value, err := strconv.Atoi(match[1])
		if err != nil || value <= 0 {
			continue
		}
		switch strings.ToLower(match[2]) {
		case "h":
			total += value * 3600
		case "m":
			total += value * 60
		case "s":
			total += value
		}
	}
	return total
}

func parseVimeoEmbed(u *url.URL, source string) (VideoEmbed, bool) {
	host := strings.ToLower(u.Hostname())
	if !isHostOrSubdomain(host, "vimeo.com") {
		return VideoEmbed{}, false
	}

	// vimeo.com/123456、vimeo.com/channels/x/123456、player.vimeo.com/video/123456
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	videoID := ""
	for i := len(segments) - 1; i >= 0; i-- {
		if onlyDigits(segments[i]) {
			videoID = segments[i]
			break
		}
	}
	if videoID == "" {
		return VideoEmbed{}, false
	}

	return VideoEmbed{
		Platform: "vimeo",
		Source:   source,
		EmbedURL: "https://player.vimeo.com/video/" + videoID + "?dnt=1",
	}, true
}

func onlyDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return value != ""
}

func isHostOrSubdomain(host, domain string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}
