package report

import (
	"encoding/json"
	"strings"
)

const builtinSuffix = " (builtin)"

type Formatter struct{}

func NewFormatter() Formatter {
	return Formatter{}
}

func (f Formatter) Format(report Report, format Format) (string, error) {
	switch format {
	case FormatText:
		return formatText(report), nil
	case FormatJSON:
		if report.Extensions == nil {
			report.Extensions = []Extension{}
		}
		if report.Paths == nil {
			report.Paths = []string{}
		}
		payload, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return "", err
		}
		return string(payload) + "\n", nil
	default:
		return "", ErrUnknownFormat
	}
}

// formatText writes one extension per line. An empty report renders as
// nothing.
func formatText(report Report) string {
	var b strings.Builder
	for _, ext := range report.Extensions {
		b.WriteString(ext.Name)
		if ext.Builtin {
			b.WriteString(builtinSuffix)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
