package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sync"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/anonmail/pkg/sanitizer"
)

// Renderer turns a markdown template into HTML wrapped in a layout. The
// markdown output is sanitized before it reaches the layout, so submitted
// text may carry formatting but never markup of its own.
//
// Parsed files are cached for the life of the Renderer. Rendered output is
// not.
type Renderer struct {
	fsys        fs.FS
	md          goldmark.Markdown
	templateDir string
	layoutDir   string

	bodies  sync.Map // name -> *body
	layouts sync.Map // name -> *template.Template
	loads   singleflight.Group
}

type body struct {
	metadata map[string]any
	tmpl     *texttemplate.Template
}

// RendererConfig sets where templates and layouts live inside the FS.
type RendererConfig struct {
	TemplateDir string // default "."
	LayoutDir   string // default "layouts"
}

func NewRenderer(fsys fs.FS) *Renderer {
	return NewRendererWithConfig(fsys, RendererConfig{})
}

func NewRendererWithConfig(fsys fs.FS, cfg RendererConfig) *Renderer {
	return &Renderer{
		fsys:        fsys,
		templateDir: orDefault(cfg.TemplateDir, "."),
		layoutDir:   orDefault(cfg.LayoutDir, "layouts"),
		md: goldmark.New(
			goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// RenderResult is one rendered message. Text is the executed markdown
// before conversion, used as the plain-text part.
type RenderResult struct {
	Metadata map[string]any
	HTML     string
	Text     string
}

func (r *Renderer) Render(layout, name string, data any) (*RenderResult, error) {
	b, err := r.body(name)
	if err != nil {
		return nil, err
	}
	lt, err := r.layout(layout)
	if err != nil {
		return nil, err
	}

	var text bytes.Buffer
	if err := b.tmpl.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("%w: execute %s: %v", ErrRenderFailed, name, err)
	}

	var converted bytes.Buffer
	if err := r.md.Convert(text.Bytes(), &converted); err != nil {
		return nil, fmt.Errorf("%w: markdown: %v", ErrRenderFailed, err)
	}

	var out bytes.Buffer
	err = lt.Execute(&out, map[string]any{
		"Content":  template.HTML(sanitizer.SanitizeHTML(converted.String())),
		"Metadata": b.metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: execute layout %s: %v", ErrRenderFailed, layout, err)
	}

	return &RenderResult{Metadata: b.metadata, HTML: out.String(), Text: text.String()}, nil
}

func (r *Renderer) body(name string) (*body, error) {
	return cached(r, &r.bodies, "t:"+name, name, func() (*body, error) {
		raw, err := fs.ReadFile(r.fsys, path.Join(r.templateDir, name))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, name, err)
		}
		parsed, err := ParseTemplate(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
		}
		tmpl, err := texttemplate.New(name).Parse(parsed.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", ErrRenderFailed, name, err)
		}
		return &body{metadata: parsed.Metadata, tmpl: tmpl}, nil
	})
}

func (r *Renderer) layout(name string) (*template.Template, error) {
	return cached(r, &r.layouts, "l:"+name, name, func() (*template.Template, error) {
		raw, err := fs.ReadFile(r.fsys, path.Join(r.layoutDir, name))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLayoutNotFound, name, err)
		}
		tmpl, err := template.New(name).Parse(string(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: parse layout %s: %v", ErrRenderFailed, name, err)
		}
		return tmpl, nil
	})
}

// cached loads name into m at most once. Concurrent misses share one load,
// and the map is checked again inside the flight so a load that finished
// just before is not repeated. Failed loads are not cached.
func cached[T any](r *Renderer, m *sync.Map, key, name string, load func() (T, error)) (T, error) {
	if v, ok := m.Load(name); ok {
		return v.(T), nil
	}
	v, err, _ := r.loads.Do(key, func() (any, error) {
		if v, ok := m.Load(name); ok {
			return v, nil
		}
		v, err := load()
		if err != nil {
			return nil, err
		}
		m.Store(name, v)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
