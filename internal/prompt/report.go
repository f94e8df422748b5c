package prompt

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// Report type names accepted by ReportPrompt.
const (
	ResearchReport        = "research_report"
	ResourceReport        = "resource_report"
	OutlineReport         = "outline_report"
	CustomReport          = "custom_report"
	ReadmeReport          = "readme_report"
	MedicalReport         = "medical_report"
	ArchitectureReport    = "architecture_report"
	MarketReport          = "market_report"
	UXReport              = "ux_report"
	RiskReport            = "risk_report"
	PropertyReport        = "property_report"
	NetworkSecurityReport = "network_security_report"
)

const (
	// DefaultReportFormat is the citation style requested from the model.
	DefaultReportFormat = "apa"

	// DefaultTotalWords is the minimum report length requested from the model.
	DefaultTotalWords = 1000
)

// Params carries the values substituted into a report prompt.
type Params struct {
	// Question is the research question the report answers.
	Question string

	// Context is the aggregated research summary.
	Context string

	// Format is the citation style, "apa" when empty.
	Format string

	// TotalWords is the minimum length, DefaultTotalWords when zero.
	TotalWords int

	// Date is the reference date written into the prompt. Zero means now.
	Date time.Time

	// Language is a BCP 47 tag or language name for the report.
	Language string
}

func (p Params) withDefaults() Params {
	if p.Format == "" {
		p.Format = DefaultReportFormat
	}
	if p.TotalWords <= 0 {
		p.TotalWords = DefaultTotalWords
	}
	if p.Date.IsZero() {
		p.Date = time.Now()
	}
	return p
}

func (p Params) header() string {
	return fmt.Sprintf("Information:\n\"\"\"\n%s\n\"\"\"\n\n", p.Context)
}

func (p Params) footer() string {
	return fmt.Sprintf("\nWrite the report in markdown, in %s. Cite sources as markdown hyperlinks in %s format "+
		"and list them at the end. Assume the current date is %s.",
		LanguageName(p.Language), p.Format, p.Date.Format("January 2, 2006"))
}

// Builder renders a complete report prompt.
type Builder func(Params) string

var reportBuilders = map[string]Builder{
	ResearchReport: func(p Params) string {
		return p.header() + fmt.Sprintf("Using the information above, answer the question or task \"%s\" in a detailed report. "+
			"The report should focus on the answer, be well structured, informative, in depth and include facts and numbers if available. "+
			"It should be at least %d words. Give a concrete opinion grounded in the information instead of vague conclusions.",
			p.Question, p.TotalWords) + p.footer()
	},
	ResourceReport: func(p Params) string {
		return p.header() + fmt.Sprintf("Based on the information above, write a bibliography recommendation report for \"%s\". "+
			"Describe each recommended resource, explain how it helps answer the question, and group them by relevance. "+
			"The report should be at least %d words.", p.Question, p.TotalWords) + p.footer()
	},
	OutlineReport: func(p Params) string {
		return p.header() + fmt.Sprintf("Using the information above, write an outline for a research report on \"%s\". "+
			"Provide the main sections, their subsections and the key points each should cover. "+
			"Aim for an outline that can grow into a report of at least %d words.", p.Question, p.TotalWords) + p.footer()
	},
	CustomReport: func(p Params) string {
		return p.header() + fmt.Sprintf("%s\n\nUse the information above to complete the task.", p.Question) + p.footer()
	},
	ReadmeReport: func(p Params) string {
		return p.header() + fmt.Sprintf("Using the information above, write a README for \"%s\". "+
			"Cover purpose, installation, usage with examples, configuration and limitations. "+
			"It should be at least %d words.", p.Question, p.TotalWords) + p.footer()
	},
	MedicalReport: func(p Params) string {
		return p.header() + fmt.Sprintf("Using the information above, write a medical research report on \"%s\". "+
			"Summarize the current evidence, study quality, risks and open questions, and state clearly that it is not medical advice. "+
			"It should be at least %d words.", p.Question, p.TotalWords) + p.footer()
	},
	ArchitectureReport: func(p Params) string {
		return p.header() + fmt.Sprintf("Using the information above, write a software architecture report on \"%s\". "+
			"Describe the components, their interactions, trade-offs and alternatives. "+
			"It should be at least %d words.", p.Question, p.TotalWords) + p.footer()
	},
	MarketReport: func(p Params) string {
		return p.header() + fmt.Sprintf("Using the information above, write a market research report on \"%s\". "+
			"Cover market size, segments, competitors, trends and opportunities with figures where available. "+
			"It should be at least %d words.", p.Question, p.TotalWords) + p.footer()
	},
	UXReport: func(p Params) string {
		return p.header() + fmt.Sprintf("Using the information above, write a user experience research report on \"%s\". "+
			"Identify user needs, pain points, usability findings and concrete design recommendations. "+
			"It should be at least %d words.", p.Question, p.TotalWords) + p.footer()
	},
	RiskReport: func(p Params) string {
		return p.header() + fmt.Sprintf("Using the information above, write a risk assessment report on \"%s\". "+
			"List the risks with likelihood and impact, then propose mitigations. "+
			"It should be at least %d words.", p.Question, p.TotalWords) + p.footer()
	},
	PropertyReport: func(p Params) string {
		return p.header() + fmt.Sprintf("Using the information above, write a real estate property report on \"%s\". "+
			"Cover location, pricing, comparable properties, market outlook and risks. "+
			"It should be at least %d words.", p.Question, p.TotalWords) + p.footer()
	},
	NetworkSecurityReport: func(p Params) string {
		return p.header() + fmt.Sprintf("Using the information above, write a network security report on \"%s\". "+
			"Describe the threat landscape, known vulnerabilities, attack vectors and recommended controls. "+
			"It should be at least %d words.", p.Question, p.TotalWords) + p.footer()
	},
}

// ReportPrompt renders the prompt for reportType. It returns
// ErrUnknownReportType when the type is not registered.
func ReportPrompt(reportType string, p Params) (string, error) {
	build, ok := reportBuilders[reportType]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownReportType, reportType)
	}
	return build(p.withDefaults()), nil
}

// IsReportType reports whether reportType has a registered builder.
func IsReportType(reportType string) bool {
	_, ok := reportBuilders[reportType]
	return ok
}

// ReportTypes returns the registered report types in sorted order.
func ReportTypes() []string {
	return slices.Sorted(maps.Keys(reportBuilders))
}
