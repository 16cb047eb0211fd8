package view

import "strings"

// SocialIconOption describes a contact channel shown on the public pages.
type SocialIconOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type socialIconAsset struct {
	Key   string
	SVG   string
	Label string
}

var (
	socialIconDefinitions = []socialIconAsset{
		{Key: "instagram", Label: "Instagram", SVG: `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"><rect x="2.75" y="2.75" width="18.5" height="18.5" rx="5"/><circle cx="12" cy="12" r="4.25"/><circle cx="17.5" cy="6.5" r=".75" fill="currentColor"/></svg>`},
		{Key: "behance", Label: "Behance", SVG: `<svg viewBox="0 0 24 24" fill="currentColor" aria-hidden="true"><path d="M8.23 11.52c.9-.43 1.37-1.1 1.37-2.13C9.6 7.35 8.08 6.8 6.33 6.8H1.5v10.26h4.97c1.86 0 3.61-.9 3.61-2.98 0-1.29-.61-2.24-1.85-2.56ZM3.75 8.55h2.12c.81 0 1.55.23 1.55 1.17 0 .88-.57 1.23-1.37 1.23h-2.3V8.55Zm2.41 6.76H3.75v-2.83h2.46c1 0 1.63.42 1.63 1.48 0 1.05-.76 1.35-1.68 1.35ZM15.5 5.9h4.65v1.16H15.5zM22.5 13.3c0-2.2-1.28-4.03-3.61-4.03-2.26 0-3.8 1.7-3.8 3.93 0 2.31 1.46 3.9 3.8 3.9 1.77 0 2.92-.8 3.47-2.5h-1.8c-.19.64-.99.97-1.6.97-1.2 0-1.82-.7-1.82-1.88h5.35c.01-.13.01-.26.01-.39Zm-5.36-.89c.07-.97.71-1.57 1.68-1.57 1.02 0 1.53.6 1.62 1.57h-3.3Z"/></svg>`},
		{Key: "email", Label: "Email", SVG: `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"><path d="M21.75 6.75v10.5a2.25 2.25 0 0 1-2.25 2.25h-15A2.25 2.25 0 0 1 2.25 17.25V6.75M21.75 6.75A2.25 2.25 0 0 0 19.5 4.5h-15A2.25 2.25 0 0 0 2.25 6.75v.243c0 .781.405 1.506 1.071 1.916l7.5 4.615a2.25 2.25 0 0 0 2.157 0l7.5-4.615a2.25 2.25 0 0 0 1.072-1.916V6.75"/></svg>`},
		{Key: "phone", Label: "Phone", SVG: `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"><path d="M2.25 6.75c0 8.284 6.716 15 15 15h2.25a2.25 2.25 0 0 0 2.25-2.25v-1.372c0-.516-.351-.966-.852-1.091l-4.423-1.106c-.44-.11-.902.055-1.173.417l-.97 1.293c-.282.376-.769.542-1.21.38a12.035 12.035 0 0 1-7.143-7.143c-.162-.441.004-.928.38-1.21l1.293-.97c.363-.271.527-.734.417-1.173L6.963 3.102a1.125 1.125 0 0 0-1.091-.852H4.5A2.25 2.25 0 0 0 2.25 4.5v2.25Z"/></svg>`},
		{Key: "blog", Label: "Blog", SVG: `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"><path d="M12 21c4.193 0 7.716-2.867 8.716-6.747M12 21c-4.193 0-7.716-2.867-8.716-6.747M12 21c2.485 0 4.5-4.03 4.5-9s-2.015-9-4.5-9m0 18c-2.485 0-4.5-4.03-4.5-9s2.015-9 4.5-9m0-0c3.365 0 6.299 1.847 7.843 4.582M12 3c-3.365 0-6.299 1.847-7.843 4.582m15.686 0c.737 1.305 1.157 2.812 1.157 4.418 0 .778-.099 1.533-.284 2.253m-.873 4.836C18.133 15.685 15.162 16.5 12 16.5s-6.134-.815-8.716-2.247m0 0A8.948 8.948 0 0 1 3 12c0-1.605.42-3.112 1.157-4.417"/></svg>`},
	}
	defaultSocialIcon = socialIconAsset{Key: "default", Label: "Link", SVG: `<svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"><path d="M17.982 18.725C16.612 16.918 14.442 15.75 12 15.75s-4.612 1.168-5.982 2.975M17.982 18.725A8.97 8.97 0 0 0 21 12c0-4.971-4.03-9-9-9s-9 4.029-9 9a8.97 8.97 0 0 0 3.018 6.725M17.982 18.725C16.392 20.14 14.296 21 12 21s-4.392-.86-5.982-2.275M15 9.75a3 3 0 1 1-6 0 3 3 0 0 1 6 0Z"/></svg>`}
	socialIconLookup  = func() map[string]socialIconAsset {
		lookup := make(map[string]socialIconAsset, len(socialIconDefinitions)+1)
		for _, icon := range socialIconDefinitions {
			lookup[icon.Key] = icon
		}
		lookup[defaultSocialIcon.Key] = defaultSocialIcon
		return lookup
	}()
)

// SocialIconOptions lists the supported channels in display order.
func SocialIconOptions() []SocialIconOption {
	options := make([]SocialIconOption, 0, len(socialIconDefinitions))
	for _, icon := range socialIconDefinitions {
		options = append(options, SocialIconOption{Key: icon.Key, Label: icon.Label})
	}
	return options
}

// SocialIconSVG resolves the SVG string for a given key, falling back to the default icon.
func SocialIconSVG(key string) string {
	trimmed := strings.ToLower(strings.TrimSpace(key))
	if trimmed == "" {
		return defaultSocialIcon.SVG
	}
	if icon, ok := socialIconLookup[trimmed]; ok {
		return icon.SVG
	}
	return defaultSocialIcon.SVG
}
