package notifications

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

type emailTemplate struct {
	subject *template.Template
	body    *template.Template
}

// TemplateManager renders the email for each notification kind.
type TemplateManager struct {
	portalURL string
	templates map[Kind]emailTemplate
}

type templateData struct {
	Params
	RecipientName string
	DocumentURL   string
}

var templateSources = map[Kind][2]string{
	KindManagerCreation: {
		`{{if .Relaunched}}Relaunched{{else}}New{{end}} document awaiting your approval: {{.Title}}`,
		`Hello {{.RecipientName}},

{{.ActorName}} {{if .Relaunched}}relaunched{{else}}submitted{{end}} "{{.Title}}" and designated you as an approving manager.
{{if .Reason}}
Comment: {{.Reason}}
{{end}}
Document: {{.Link}}
Deadline: {{.Deadline.Format "2006-01-02 15:04 MST"}}

Review it at {{.DocumentURL}}
`,
	},
	KindUserAssignment: {
		`Document ready for your signature: {{.Title}}`,
		`Hello {{.RecipientName}},

"{{.Title}}" was approved by {{.ActorName}} and is waiting for your signature.

Document: {{.Link}}
Deadline: {{.Deadline.Format "2006-01-02 15:04 MST"}}

Sign it at {{.DocumentURL}}
`,
	},
	KindDisapproval: {
		`{{if .Rejected}}Document rejected{{else}}Document disapproved{{end}}: {{.Title}}`,
		`Hello {{.RecipientName}},

{{.ActorName}} {{if .Rejected}}rejected{{else}}disapproved{{end}} "{{.Title}}".

Reason: {{.Reason}}

You can correct the document and relaunch it at {{.DocumentURL}}
`,
	},
	KindCompletion: {
		`Document fully signed: {{.Title}}`,
		`Hello {{.RecipientName}},

Every assigned signer has signed "{{.Title}}". The workflow is complete.

Document: {{.Link}}
Details: {{.DocumentURL}}
`,
	},
}

func NewTemplateManager(portalURL string) (*TemplateManager, error) {
	tm := &TemplateManager{
		portalURL: strings.TrimRight(portalURL, "/"),
		templates: make(map[Kind]emailTemplate, len(templateSources)),
	}
	for kind, src := range templateSources {
		subject, err := template.New(string(kind) + "_subject").Parse(src[0])
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s subject: %w", kind, err)
		}
		body, err := template.New(string(kind) + "_body").Parse(src[1])
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s body: %w", kind, err)
		}
		tm.templates[kind] = emailTemplate{subject: subject, body: body}
	}
	return tm, nil
}

// Render returns the subject and plain text body for msg.
func (tm *TemplateManager) Render(msg Message) (string, string, error) {
	tpl, ok := tm.templates[msg.Kind]
	if !ok {
		return "", "", fmt.Errorf("unknown notification kind %q", msg.Kind)
	}
	name := msg.To.Name
	if name == "" {
		name = msg.To.Email
	}
	data := templateData{
		Params:        msg.Params,
		RecipientName: name,
		DocumentURL:   fmt.Sprintf("%s/sharepoints/%s", tm.portalURL, msg.Params.SharePointID),
	}

	var subject, body bytes.Buffer
	if err := tpl.subject.Execute(&subject, data); err != nil {
		return "", "", fmt.Errorf("failed to render %s subject: %w", msg.Kind, err)
	}
	if err := tpl.body.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("failed to render %s body: %w", msg.Kind, err)
	}
	return strings.TrimSpace(subject.String()), body.String(), nil
}
