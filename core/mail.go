package core

import (
	"bytes"
	htmltmpl "html/template"
	"io/fs"
	"net/mail"
	"path/filepath"
	"strings"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"
)

var (
	templates tmplCache
	tmplInit  sync.Once
)

type (
	tmplCacheEntry map[string]interface{}    // {ext: *Template}
	tmplCache      map[string]tmplCacheEntry // {name: tmplCacheEntry}

	Attachment struct {
		Content     *bytes.Buffer
		ContentType string
		Filename    string
	}

	EmailMessage struct {
		To          []mail.Address
		Cc          []mail.Address
		Bcc         []mail.Address
		Subject     string
		BodyStr     string // simple text/plain, non-templated content
		Attachments []Attachment

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	// ContextData wraps TemplateData with app-wide context for rendering.
	ContextData struct {
		FrontendBaseURL string
		AppName         string
		Data            interface{}
	}

	// EmailService is any service that can send emails.
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

// ParseEmailTemplates loads and caches all email templates from the given fs.
// The fs is expected to hold "templates/<name>.txt" and optional
// "templates/<name>.html" entries.
func ParseEmailTemplates(fsys fs.FS, logger Logger) {
	tmplInit.Do(func() {
		templates = make(tmplCache)
		err := fs.WalkDir(fsys, "templates", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			ext := filepath.Ext(path)
			name := strings.TrimSuffix(filepath.Base(path), ext)
			entry, ok := templates[name]
			if !ok {
				entry = make(tmplCacheEntry)
				templates[name] = entry
			}
			switch ext {
			case ".txt":
				tmpl, err := texttmpl.ParseFS(fsys, path)
				if err != nil {
					return errors.Wrapf(err, "parsing %s", path)
				}
				entry[ext] = tmpl
			case ".html":
				tmpl, err := htmltmpl.ParseFS(fsys, path)
				if err != nil {
					return errors.Wrapf(err, "parsing %s", path)
				}
				entry[ext] = tmpl
			}
			return nil
		})
		if err != nil {
			logger.Fatal("parsing email templates", err)
		}
	})
}

func (m *EmailMessage) contextData(conf *Config) ContextData {
	return ContextData{
		FrontendBaseURL: conf.FrontendBaseURL,
		AppName:         conf.AppName,
		Data:            m.TemplateData,
	}
}

func (m *EmailMessage) template(ext string) (interface{}, bool) {
	entry, ok := templates[m.TemplateName]
	if !ok {
		return nil, ok
	}
	tmpl, ok := entry[ext]
	return tmpl, ok
}

// Render renders the message's templated contents (if any).
func (m *EmailMessage) Render(conf *Config) error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	}
	if m.TemplateName == "" {
		return nil
	}

	data := m.contextData(conf)

	if tmpl, ok := m.template(".txt"); ok {
		var buf bytes.Buffer
		if err := tmpl.(*texttmpl.Template).Execute(&buf, data); err != nil {
			return errors.Wrapf(err, "rendering %s.txt", m.TemplateName)
		}
		m.TextContent = buf.String()
	}
	if tmpl, ok := m.template(".html"); ok {
		var buf bytes.Buffer
		if err := tmpl.(*htmltmpl.Template).Execute(&buf, data); err != nil {
			return errors.Wrapf(err, "rendering %s.html", m.TemplateName)
		}
		m.HTMLContent = buf.String()
	}
	return nil
}

func (m *EmailMessage) HasRecipients() bool {
	return len(m.To)+len(m.Cc)+len(m.Bcc) > 0
}

func (m *EmailMessage) HasContent() bool {
	return m.TextContent != "" || m.HTMLContent != ""
}

func (m *EmailMessage) HasAttachments() bool {
	return len(m.Attachments) > 0
}
