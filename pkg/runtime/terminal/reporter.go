package terminal

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/de-tools/db-custodian/pkg/adapters"
	"github.com/de-tools/db-custodian/pkg/models/domain"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates an --output flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON, FormatYAML:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported output format %q, expected text, json or yaml", s)
	}
}

// Reporter renders run reports to the console.
type Reporter struct {
	writer io.Writer
	format Format
}

// NewReporter creates a new console reporter
func NewReporter(writer io.Writer, format Format) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	if format == "" {
		format = FormatText
	}
	return &Reporter{writer: writer, format: format}
}

const textTmpl = `Capacity check for profile {{.Profile}} ({{.Engine}}), threshold {{.Threshold}}, table {{.Table}}
{{range .Outcomes}}{{.Message}}
{{end}}Checked {{len .Outcomes}} database(s), {{.Remediated}} remediated{{if .Failed}}, failures occurred{{end}}
`

func (r *Reporter) Handle(report domain.RunReport) error {
	view := adapters.MapRunReportDomainToApi(report)

	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.writer)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	case FormatYAML:
		enc := yaml.NewEncoder(r.writer)
		defer func() { _ = enc.Close() }()
		return enc.Encode(view)
	default:
		t, err := template.New("report").Parse(textTmpl)
		if err != nil {
			return fmt.Errorf("failed to parse template: %w", err)
		}
		return t.Execute(r.writer, view)
	}
}
