package notify

import (
	"strings"
	"text/template"
)

// Notification is one outbound email.
type Notification struct {
	To      string
	Subject string
	Body    string
}

// TemplateData feeds the per-status message templates.
type TemplateData struct {
	Name    string
	Service string
	Date    string
}

type statusTemplate struct {
	subject string
	body    *template.Template
}

// Statuses that notify the customer. Pending is deliberately absent: it is
// the default no-news state and sends nothing.
var statusTemplates = map[string]statusTemplate{
	"In Progress": {
		subject: "Your bike service is underway",
		body: template.Must(template.New("in_progress").Parse(
			`Hi {{.Name}},

Good news: work on your "{{.Service}}" booking (scheduled {{.Date}}) has started.
We'll let you know as soon as your bike is ready.

The Bikeshop team
`)),
	},
	"Ready for Delivery": {
		subject: "Your bike is ready for pickup",
		body: template.Must(template.New("ready").Parse(
			`Hi {{.Name}},

Your "{{.Service}}" booking (scheduled {{.Date}}) is done and your bike is ready
for pickup or delivery.

The Bikeshop team
`)),
	},
	"Completed": {
		subject: "Your bike service is complete",
		body: template.Must(template.New("completed").Parse(
			`Hi {{.Name}},

Your "{{.Service}}" booking (scheduled {{.Date}}) is complete. Thanks for
choosing us - we hope to see you again.

The Bikeshop team
`)),
	},
}

// Compose renders the notification for a status transition. The second
// return is false for statuses that send nothing.
func Compose(status, to string, data TemplateData) (Notification, bool) {
	tpl, ok := statusTemplates[status]
	if !ok {
		return Notification{}, false
	}

	var b strings.Builder
	if err := tpl.body.Execute(&b, data); err != nil {
		return Notification{}, false
	}
	return Notification{To: to, Subject: tpl.subject, Body: b.String()}, true
}
