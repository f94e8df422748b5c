package config

// SiteConfig holds scrape settings for a single host.
type SiteConfig struct {
	// Cookie is sent as the Cookie header.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers sent to this host.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// ResearchDefaults overrides the built-in defaults. Zero values are ignored.
type ResearchDefaults struct {
	Provider       string   `yaml:"provider,omitempty"`
	SmartModel     string   `yaml:"smartModel,omitempty"`
	FastModel      string   `yaml:"fastModel,omitempty"`
	Temperature    *float64 `yaml:"temperature,omitempty"`
	Agent          string   `yaml:"agent,omitempty"`
	ReportType     string   `yaml:"reportType,omitempty"`
	Language       string   `yaml:"language,omitempty"`
	TotalWords     int      `yaml:"totalWords,omitempty"`
	SearchProvider string   `yaml:"search,omitempty"`
	MaxResults     int      `yaml:"maxResults,omitempty"`
	NumQueries     int      `yaml:"queries,omitempty"`
	Concurrency    int      `yaml:"concurrency,omitempty"`
	OutputDir      string   `yaml:"outputDir,omitempty"`
	Formats        []string `yaml:"formats,omitempty"`
	UserAgent      string   `yaml:"userAgent,omitempty"`
}

// DefaultSiteKey is the sites entry applied to every host.
const DefaultSiteKey = "default"

// File represents the structure of the .researcher.yaml configuration file.
type File struct {
	// Defaults overrides the built-in research defaults.
	Defaults ResearchDefaults `yaml:"defaults,omitempty"`

	// Agents maps agent names to custom role prompts. A %s verb in the
	// prompt is replaced by the report language name.
	Agents map[string]string `yaml:"agents,omitempty"`

	// Sites maps host names to scrape settings. The "default" entry
	// applies to every host.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`
}

// GetSiteConfig returns the scrape settings for host, merging the host
// entry over the default entry.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	base := cf.Sites[DefaultSiteKey]
	result := SiteConfig{Cookie: base.Cookie}
	if len(base.Headers) > 0 {
		result.Headers = make(map[string]string, len(base.Headers))
		for k, v := range base.Headers {
			result.Headers[k] = v
		}
	}

	site, ok := cf.Sites[host]
	if !ok || host == DefaultSiteKey {
		return result
	}
	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(site.Headers))
		}
		for k, v := range site.Headers {
			result.Headers[k] = v
		}
	}
	return result
}
