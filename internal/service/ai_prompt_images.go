package service

import (
	"fmt"
	"regexp"
	"strings"
)

var markdownImageLink = regexp.MustCompile(`!\[[^\]]*]\((<[^>]+>|[^)\s]+)([^)]*)\)`)

// imageLinkStash 在发送 Prompt 前用短占位符替换 Markdown 图片地址。
type imageLinkStash struct {
	links map[string]string
}

func stashImageLinks(input string) (string, *imageLinkStash) {
	stash := &imageLinkStash{}
	if !markdownImageLink.MatchString(input) {
		return input, stash
	}

	stash.links = make(map[string]string)
	n := 0
	output := markdownImageLink.ReplaceAllStringFunc(input, func(match string) string {
		groups := markdownImageLink.FindStringSubmatch(match)
		if len(groups) < 3 {
			return match
		}
		n++
		original := strings.TrimSuffix(strings.TrimPrefix(groups[1], "<"), ">")
		placeholder := fmt.Sprintf("image://folio-%d.img", n)
		stash.links[placeholder] = original
		return strings.Replace(match, groups[1], placeholder, 1)
	})
	return output, stash
}

func (s *imageLinkStash) Len() int {
	if s == nil {
		return 0
	}
	return len(s.links)
}

// restore 还原占位符，模型给占位符加上尖括号时一并去掉。
func (s *imageLinkStash) restore(output string) string {
	if s.Len() == 0 {
		return output
	}
	for placeholder, original := range s.links {
		output = strings.ReplaceAll(output, "<"+placeholder+">", original)
		output = strings.ReplaceAll(output, placeholder, original)
	}
	return output
}
