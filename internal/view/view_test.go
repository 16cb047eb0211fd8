package view

import (
	"html/template"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderMarkdownSanitizes(t *testing.T) {
	html, err := RenderMarkdown("**bold**\nline two <script>alert(1)</script> [link](https://example.com)")
	require.NoError(t, err)

	out := string(html)
	require.Contains(t, out, "<strong>bold</strong>")
	require.Contains(t, out, "<br/>")
	require.NotContains(t, out, "<script>")
	require.Contains(t, out, `target="_blank"`)
}

func TestMarkdownOrTextEmpty(t *testing.T) {
	require.Empty(t, string(markdownOrText("   ")))
}

func TestParseVideoEmbed(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		platform string
		embed    string
		ok       bool
	}{
		{name: "youtube watch", input: "https://www.youtube.com/watch?v=abc123&t=1m5s", platform: "youtube", embed: "https://www.youtube-nocookie.com/embed/abc123?modestbranding=1&playsinline=1&rel=0&start=65", ok: true},
		{name: "youtu.be without scheme", input: "youtu.be/xyz", platform: "youtube", embed: "https://www.youtube-nocookie.com/embed/xyz?modestbranding=1&playsinline=1&rel=0", ok: true},
		{name: "shorts", input: "https://youtube.com/shorts/s1/", platform: "youtube", embed: "https://www.youtube-nocookie.com/embed/s1?modestbranding=1&playsinline=1&rel=0", ok: true},
		{name: "vimeo", input: "https://vimeo.com/channels/staff/76979871", platform: "vimeo", embed: "https://player.vimeo.com/video/76979871?dnt=1", ok: true},
		{name: "vimeo player", input: "https://player.vimeo.com/video/42", platform: "vimeo", embed: "https://player.vimeo.com/video/42?dnt=1", ok: true},
		{name: "unsupported host", input: "https://example.com/watch?v=1"},
		{name: "javascript", input: "javascript:alert(1)"},
		{name: "empty", input: "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseVideoEmbed(tt.input)
			require.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			require.Equal(t, tt.platform, got.Platform)
			require.Equal(t, tt.embed, got.EmbedURL)
		})
	}
}

func TestSocialIconSVGFallsBack(t *testing.T) {
	require.Equal(t, SocialIconSVG("Instagram"), SocialIconSVG(" instagram "))
	require.Equal(t, defaultSocialIcon.SVG, SocialIconSVG("myspace"))
	require.Len(t, SocialIconOptions(), 5)
	for _, option := range SocialIconOptions() {
		require.True(t, strings.HasPrefix(SocialIconSVG(option.Key), "<svg"))
	}
}

func TestHeadingClass(t *testing.T) {
	require.Equal(t, "font-serif", HeadingClass("serif"))
	require.Equal(t, "font-sans", HeadingClass("SANS"))
	require.Equal(t, "font-serif", HeadingClass(""))
}

func TestImageSrcAllowsInlineBitmaps(t *testing.T) {
	require.Equal(t, template.URL("data:image/jpeg;base64,AAAA"), ImageSrc(" data:image/jpeg;base64,AAAA "))
	require.Equal(t, "data:text/html;base64,PHNjcmlwdD4=", ImageSrc("data:text/html;base64,PHNjcmlwdD4="))
	require.Equal(t, "/uploads/a.jpg", ImageSrc("/uploads/a.jpg"))
}

func TestImageSrcInTemplate(t *testing.T) {
	tmpl := template.Must(template.New("img").Funcs(FuncMap()).Parse(`<img src="{{imageSrc .}}">`))

	var inline, unsafe strings.Builder
	require.NoError(t, tmpl.Execute(&inline, "data:image/png;base64,iVBORw0KGgo="))
	require.NoError(t, tmpl.Execute(&unsafe, "javascript:alert(1)"))

	require.Contains(t, inline.String(), "data:image/png;base64,iVBORw0KGgo=")
	require.Contains(t, unsafe.String(), "#ZgotmplZ")
}

func TestHumanBytes(t *testing.T) {
	require.Equal(t, "512 B", HumanBytes(512))
	require.Equal(t, "1.5 KB", HumanBytes(1536))
	require.Equal(t, "50.0 MB", HumanBytes(50<<20))
}

func TestFuncMapKeys(t *testing.T) {
	keys := make([]string, 0, len(FuncMap()))
	for key := range FuncMap() {
		keys = append(keys, key)
	}
	require.ElementsMatch(t, []string{"isOdd", "markdown", "socialIcon", "imageSrc", "humanBytes"}, keys)
}
