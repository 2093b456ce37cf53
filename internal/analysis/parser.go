package analysis

import (
	"strconv"
	"strings"
	"time"

	"github.com/bytefusion/loganalyzer/pkg/models"
)

// section is the parser's current position in the four-section response
// format. Transitions happen only on section headers; everything else is
// interpreted relative to the current section.
type section int

const (
	sectionNone section = iota
	sectionErrorDetection
	sectionCodeAnalysis
	sectionAnalysis
	sectionResolution
)

// listContext tracks which bullet list is being collected inside RESOLUTION.
type listContext int

const (
	listNone listContext = iota
	listImmediateActions
	listLongTermSolutions
)

const (
	defaultStatusCode   = 500
	defaultErrorType    = "Unknown Error"
	defaultFileLocation = "Unknown location"
	defaultImpact       = "Unknown impact"
	defaultRootCause    = "Unknown cause"

	fallbackMessageLimit = 150
)

// ParseResponse converts a backend completion into an AnalysisResult. It
// never fails: missing or malformed sections degrade to defaults, and
// fallbackMessage (the originating record's message) stands in for a missing
// error description. needs_immediate_attention is always derived from the
// resolved severity, never read from the text.
func ParseResponse(raw, fallbackMessage string) models.AnalysisResult {
	var (
		current   = sectionNone
		list      = listNone
		severity  string
		errorType string
		errorMsg  string
		fileLoc   string
		impact    string
		rootCause string
		probCode  *string
		suggFix   *string

		statusCode       = defaultStatusCode
		immediateActions = []string{}
		resolutionSteps  = []string{}
	)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Section headers: case-sensitive prefix match, CODE ANALYSIS before
		// ANALYSIS so the longer header wins.
		switch {
		case strings.HasPrefix(line, "ERROR DETECTION"):
			current, list = sectionErrorDetection, listNone
			continue
		case strings.HasPrefix(line, "CODE ANALYSIS"):
			current, list = sectionCodeAnalysis, listNone
			continue
		case strings.HasPrefix(line, "RESOLUTION"):
			current, list = sectionResolution, listNone
			continue
		case strings.HasPrefix(line, "ANALYSIS"):
			current, list = sectionAnalysis, listNone
			continue
		}

		switch current {
		case sectionErrorDetection:
			switch {
			case strings.HasPrefix(line, "Type:"):
				errorType = labelValue(line)
			case strings.HasPrefix(line, "Status Code:"):
				statusCode = parseStatusCode(labelValue(line))
			case strings.HasPrefix(line, "Description:"):
				errorMsg = labelValue(line)
			case strings.HasPrefix(line, "File Location:"):
				fileLoc = labelValue(line)
			}

		case sectionCodeAnalysis:
			switch {
			case strings.HasPrefix(line, "Problematic Code:"):
				if v := labelValue(line); v != "" {
					probCode = &v
				}
			case strings.HasPrefix(line, "Suggested Fix:"):
				if v := labelValue(line); v != "" {
					suggFix = &v
				}
			}

		case sectionAnalysis:
			switch {
			case strings.HasPrefix(line, "Severity:"):
				severity = labelValue(line)
			case strings.HasPrefix(line, "Impact:"):
				impact = labelValue(line)
			case strings.HasPrefix(line, "Root Cause:"):
				rootCause = labelValue(line)
			}

		case sectionResolution:
			switch {
			case strings.HasPrefix(line, "Immediate Actions"):
				list = listImmediateActions
			case strings.HasPrefix(line, "Long-term Solutions"):
				list = listLongTermSolutions
			case isBullet(line):
				item := bulletValue(line)
				if item == "" {
					continue
				}
				switch list {
				case listImmediateActions:
					immediateActions = append(immediateActions, item)
				case listLongTermSolutions:
					resolutionSteps = append(resolutionSteps, item)
				}
			}
		}
	}

	if errorType == "" {
		errorType = defaultErrorType
	}
	if errorMsg == "" {
		errorMsg = fallbackErrorMessage(fallbackMessage)
	}
	if fileLoc == "" {
		fileLoc = defaultFileLocation
	}
	if impact == "" {
		impact = defaultImpact
	}
	if rootCause == "" {
		rootCause = defaultRootCause
	}

	resolved := models.NormalizeSeverity(severity)

	return models.AnalysisResult{
		Timestamp:               time.Now().UTC(),
		ErrorType:               errorType,
		ErrorMessage:            errorMsg,
		FileLocation:            fileLoc,
		ProblematicCode:         probCode,
		SuggestedFix:            suggFix,
		StatusCode:              statusCode,
		Severity:                resolved,
		Impact:                  impact,
		RootCause:               rootCause,
		ImmediateActions:        immediateActions,
		ResolutionSteps:         resolutionSteps,
		NeedsImmediateAttention: resolved == models.SeverityHigh,
	}
}

// ParseCustomResponse converts a free-form prompt completion into its
// structured form. Like ParseResponse it never fails; unmatched prose outside
// the Analysis section is dropped.
func ParseCustomResponse(raw string) models.CustomAnalysis {
	result := models.CustomAnalysis{
		Recommendations: []string{},
		CodeSuggestions: []string{},
		NextSteps:       []string{},
	}

	var analysisLines []string
	current := ""

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case strings.Contains(line, "Code Suggestions"):
			current = "code_suggestions"
		case strings.Contains(line, "Recommendations"):
			current = "recommendations"
		case strings.Contains(line, "Next Steps"):
			current = "next_steps"
		case strings.Contains(line, "Analysis"):
			current = "analysis"
		case isBullet(line):
			item := bulletValue(line)
			switch current {
			case "recommendations":
				result.Recommendations = append(result.Recommendations, item)
			case "code_suggestions":
				result.CodeSuggestions = append(result.CodeSuggestions, item)
			case "next_steps":
				result.NextSteps = append(result.NextSteps, item)
			}
		default:
			if current == "analysis" {
				analysisLines = append(analysisLines, line)
			}
		}
	}

	result.Analysis = strings.Join(analysisLines, "\n")
	return result
}

// labelValue returns the trimmed text after the first colon.
func labelValue(line string) string {
	_, value, found := strings.Cut(line, ":")
	if !found {
		return ""
	}
	return strings.TrimSpace(value)
}

func parseStatusCode(value string) int {
	code, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return defaultStatusCode
	}
	return code
}

func isBullet(line string) bool {
	return strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*")
}

func bulletValue(line string) string {
	return strings.TrimSpace(strings.TrimLeft(line, "-* "))
}

// fallbackErrorMessage truncates the record message to 150 characters,
// appending an ellipsis when truncated.
func fallbackErrorMessage(msg string) string {
	runes := []rune(msg)
	if len(runes) <= fallbackMessageLimit {
		return msg
	}
	return string(runes[:fallbackMessageLimit]) + "..."
}
