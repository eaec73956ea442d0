package mail

import "html/template"

type InternalAlertData struct {
	Name   string
	Phone  string
	Email  string
	LeadID string
	// MessageHTML is the escaped message with line breaks as <br/>.
	MessageHTML template.HTML
}

type CustomerAckData struct {
	MaskedName string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string

	From       string
	InternalTo []string

	dialer messageSender
	tmpl   *template.Template
}
