package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	"sync"
	texttemplate "text/template"

	"eventrio/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

// templateRenderer implements domain.EmailTemplateRenderer using embedded template files.
// Parsed templates are cached per file name.
type templateRenderer struct {
	mu    sync.Mutex
	html  map[string]*htmltemplate.Template
	plain map[string]*texttemplate.Template
}

// NewTemplateRenderer returns an EmailTemplateRenderer that loads templates from the embedded templates folder.
func NewTemplateRenderer() domain.EmailTemplateRenderer {
	return &templateRenderer{
		html:  map[string]*htmltemplate.Template{},
		plain: map[string]*texttemplate.Template{},
	}
}

// Render executes <name>_subject.txt, <name>.html and <name>.txt with data.
func (r *templateRenderer) Render(templateName string, data any) (subject, htmlBody, textBody string, err error) {
	subject, err = r.renderText(templateName+"_subject.txt", data)
	if err != nil {
		return "", "", "", fmt.Errorf("render subject: %w", err)
	}
	htmlBody, err = r.renderHTML(templateName+".html", data)
	if err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	textBody, err = r.renderText(templateName+".txt", data)
	if err != nil {
		return "", "", "", fmt.Errorf("render text: %w", err)
	}
	return strings.TrimSpace(subject), htmlBody, textBody, nil
}

func (r *templateRenderer) renderHTML(name string, data any) (string, error) {
	r.mu.Lock()
	t, ok := r.html[name]
	if !ok {
		var err error
		t, err = htmltemplate.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			r.mu.Unlock()
			return "", err
		}
		r.html[name] = t
	}
	r.mu.Unlock()
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *templateRenderer) renderText(name string, data any) (string, error) {
	r.mu.Lock()
	t, ok := r.plain[name]
	if !ok {
		var err error
		t, err = texttemplate.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			r.mu.Unlock()
			return "", err
		}
		r.plain[name] = t
	}
	r.mu.Unlock()
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
