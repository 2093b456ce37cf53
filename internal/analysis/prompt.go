package analysis

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bytefusion/loganalyzer/pkg/models"
)

// analysisPromptTemplate instructs the backend to emit exactly four named
// sections in order. The parser in this package depends on these headers and
// labels; change them together or not at all.
const analysisPromptTemplate = `Analyze this error log and provide a detailed solution. Format your response exactly as follows:

ERROR DETECTION
Type: [Specific error type, e.g., Database Connection Error, API Error, Authentication Error]
Status Code: [HTTP status code if applicable, or internal error code]
Description: [Brief, clear description of the error]
File Location: [Extract or infer the file location from the error message]

CODE ANALYSIS
Problematic Code: [If available, show the problematic code snippet]
Suggested Fix: [Provide the corrected code]

ANALYSIS
Severity: [HIGH/MEDIUM/LOW]
Impact: [Brief description of the impact]
Root Cause: [Most likely cause of the error]

RESOLUTION
Immediate Actions:
- [Action 1]
- [Action 2]

Long-term Solutions:
- [Solution 1]
- [Solution 2]

Log Details:
- Message: %s
- Level: %s
- Error Context: %s
- Timestamp: %s
`

const customPromptTemplate = `Analyze this context and provide a detailed solution. When referring to code or files, wrap the file paths in backticks (` + "`path/to/file.ext`" + `).

Context:
%s

Prompt:
%s

Provide response in the following format:
1. Analysis
2. Recommendations (include file paths in backticks where relevant)
3. Code Suggestions (include file paths in backticks)
4. Next Steps
`

// BuildPrompt renders the fixed analysis prompt for a record. Given
// identical inputs the output is byte-identical: the only time-dependent
// content is the record's own timestamp.
func BuildPrompt(rec models.LogRecord) string {
	contextJSON := "{}"
	timestamp := rec.Timestamp.UTC().Format(time.RFC3339)

	if ev := rec.Original; ev != nil {
		if len(ev.Context) > 0 {
			// json.Marshal sorts map keys, keeping the prompt deterministic.
			if b, err := json.Marshal(ev.Context); err == nil {
				contextJSON = string(b)
			}
		}
		if ev.Datetime != "" {
			timestamp = ev.Datetime
		}
	}

	return fmt.Sprintf(analysisPromptTemplate, rec.Message, rec.Level, contextJSON, timestamp)
}

// BuildCustomPrompt wraps a user-supplied prompt and pre-serialized context
// in the custom analysis format.
func BuildCustomPrompt(prompt, contextJSON string) string {
	if contextJSON == "" {
		contextJSON = "{}"
	}
	return fmt.Sprintf(customPromptTemplate, contextJSON, prompt)
}
