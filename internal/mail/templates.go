package mail

import (
	"bytes"
	"html/template"
	texttemplate "text/template"
)

type templateData struct {
	AppName  string
	Name     string
	Code     string
	Link     string
	Validity string
}

const layoutHTML = `{{define "layout"}}<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #2c3e50;">{{.AppName}}</h2>
  <p>Hi {{.Name}},</p>
  {{template "content" .}}
  <p style="color: #999; font-size: 12px; margin-top: 32px;">This is an automated message from {{.AppName}}. Please do not reply.</p>
</body>
</html>{{end}}`

var htmlBodies = map[string]string{
	"verification": `{{define "content"}}<p>Use the code below to verify your email address. It is valid for {{.Validity}}.</p>
  <p style="font-size: 28px; font-weight: bold; letter-spacing: 6px;">{{.Code}}</p>
  <p>If you did not create an account, you can ignore this email.</p>{{end}}`,
	"welcome": `{{define "content"}}<p>Your email address is verified. Welcome to {{.AppName}}!</p>{{end}}`,
	"reset": `{{define "content"}}<p>We received a request to reset your password. The link below is valid for {{.Validity}}.</p>
  <p><a href="{{.Link}}" style="background-color: #3498db; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px;">Reset password</a></p>
  <p>If the button does not work, open this URL: {{.Link}}</p>
  <p>If you did not request a reset, you can ignore this email.</p>{{end}}`,
	"reset_success": `{{define "content"}}<p>Your password was reset successfully. You can now sign in with your new password.</p>
  <p>If this was not you, contact support immediately.</p>{{end}}`,
	"password_changed": `{{define "content"}}<p>Your password was changed and all sessions were signed out.</p>
  <p>If this was not you, reset your password immediately.</p>{{end}}`,
}

var textBodies = map[string]string{
	"verification":     "Hi {{.Name}},\n\nYour {{.AppName}} verification code is {{.Code}}. It is valid for {{.Validity}}.\n",
	"welcome":          "Hi {{.Name}},\n\nYour email address is verified. Welcome to {{.AppName}}!\n",
	"reset":            "Hi {{.Name}},\n\nReset your {{.AppName}} password within {{.Validity}}:\n{{.Link}}\n",
	"reset_success":    "Hi {{.Name}},\n\nYour {{.AppName}} password was reset successfully.\n",
	"password_changed": "Hi {{.Name}},\n\nYour {{.AppName}} password was changed and all sessions were signed out.\n",
}

var (
	htmlTemplates = map[string]*template.Template{}
	textTemplates = map[string]*texttemplate.Template{}
)

func init() {
	for name, body := range htmlBodies {
		t := template.Must(template.New(name).Parse(layoutHTML))
		htmlTemplates[name] = template.Must(t.Parse(body))
	}
	for name, body := range textBodies {
		textTemplates[name] = texttemplate.Must(texttemplate.New(name).Parse(body))
	}
}

func render(name string, data templateData) (string, string, error) {
	var html, text bytes.Buffer
	if err := htmlTemplates[name].ExecuteTemplate(&html, "layout", data); err != nil {
		return "", "", err
	}
	if err := textTemplates[name].Execute(&text, data); err != nil {
		return "", "", err
	}
	return html.String(), text.String(), nil
}
