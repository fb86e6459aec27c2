package reminder

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/garyjia/ar-reminder/internal/invoice"
)

const dueDateLayout = "1/2/2006"

const bodyTemplate = `<div style="font-family: Calibri, Arial, sans-serif; font-size: 14pt; line-height: 1.4;">
{{.Greeting}}
<br><br>
{{.Introduction}}
<br><br>
{{.Lead}}
<br><br>
{{- range .Sections}}
{{- if .Overdue}}
<p style="margin: 16px 0 8px 0;">
  <span style="background-color: #dc3545; color: white; padding: 6px 12px; border-radius: 4px; font-weight: bold; font-size: 12pt;">{{.Label}}</span>
</p>
{{- else}}
<p style="margin: 16px 0 8px 0; font-weight: bold; color: #0066cc;">{{.Label}}:</p>
{{- end}}
<ul style="margin: 8px 0; padding-left: 24px;">
{{- range .Items}}
  <li style="margin-bottom: 4px;">
    <strong>Invoice #{{.Number}}</strong> | {{.DateLabel}}: <strong>{{.DueDate}}</strong>
    {{- if .Link}} | <a href="{{.Link}}" target="_blank" style="color: #007bff; text-decoration: none;">View &amp; Pay Invoice</a>{{end}}
  </li>
{{- end}}
</ul>
{{- end}}
<br>
{{.ClosingRequest}}
{{- if .Signature}}<br><br>{{range $i, $line := .Signature}}{{if $i}}<br>{{end}}{{$line}}{{end}}{{end}}</div>`

var body = template.Must(template.New("reminder").Parse(bodyTemplate))

type bodyItem struct {
	Number    string
	DateLabel string
	DueDate   string
	Link      string
}

type bodySection struct {
	Label   string
	Overdue bool
	Items   []bodyItem
}

type bodyData struct {
	Greeting       string
	Introduction   string
	Lead           string
	Sections       []bodySection
	ClosingRequest string
	Signature      []string
}

// linkFunc resolves the payment link of an invoice number, "" when unknown
type linkFunc func(number string) string

func listItems(invoices []invoice.Invoice, overdue bool, link linkFunc) []bodyItem {
	label := "Due on"
	if overdue {
		label = "Overdue since"
	}

	items := make([]bodyItem, 0, len(invoices))
	for _, inv := range invoices {
		due := invoice.NotAvailable
		if inv.DueDateValid {
			due = inv.DueDate.Format(dueDateLayout)
		}
		items = append(items, bodyItem{
			Number:    inv.Number,
			DateLabel: label,
			DueDate:   due,
			Link:      link(inv.Number),
		})
	}
	return items
}

// signatureLines splits the signature into lines, falling back to the
// tone's own sign-off
func signatureLines(signature string, tone Tone) []string {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		signature = tone.Signature
	}
	return strings.Split(strings.ReplaceAll(signature, "\r\n", "\n"), "\n")
}

func render(data bodyData) (string, error) {
	var buf bytes.Buffer
	if err := body.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render reminder body: %w", err)
	}
	return buf.String(), nil
}

// renderCurrent lists not-yet-due invoices under a single heading
func renderCurrent(customer string, invoices []invoice.Invoice, link linkFunc, signature string) (string, error) {
	tone := tones[ToneCurrent]
	return render(bodyData{
		Greeting:     tone.Greeting(customer),
		Introduction: tone.Introduction,
		Lead:         "Below are your newly sent invoices:",
		Sections: []bodySection{
			{Label: currentLabel, Items: listItems(invoices, false, link)},
		},
		ClosingRequest: tone.ClosingRequest,
		Signature:      signatureLines(signature, tone),
	})
}

// renderOverdue lists overdue invoices grouped by category, most overdue first
func renderOverdue(customer string, categorized invoice.Categorized, link linkFunc, signature string) (string, error) {
	tone := ToneFor(categorized)

	var sections []bodySection
	for _, s := range severity {
		invoices := categorized.In(s.bucket)
		if len(invoices) == 0 {
			continue
		}
		sections = append(sections, bodySection{
			Label:   s.label,
			Overdue: true,
			Items:   listItems(invoices, true, link),
		})
	}

	return render(bodyData{
		Greeting:       tone.Greeting(customer),
		Introduction:   tone.Introduction,
		Lead:           "Below are your outstanding overdue invoices:",
		Sections:       sections,
		ClosingRequest: tone.ClosingRequest,
		Signature:      signatureLines(signature, tone),
	})
}
