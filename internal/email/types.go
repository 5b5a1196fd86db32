package email

// Email is one outgoing message.
type Email struct {
	From     string
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// TemplateData is passed to the HTML templates.
type TemplateData map[string]interface{}
