package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*
var templatesFS embed.FS

// Renderer превращает Page в HTML. html/template экранирует весь
// пользовательский текст, поэтому описание задачи выводится как есть.
type Renderer struct {
	tmpl *template.Template
	css  []byte
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("разбор шаблона: %w", err)
	}
	css, err := templatesFS.ReadFile("templates/app.css")
	if err != nil {
		return nil, fmt.Errorf("чтение стилей: %w", err)
	}
	return &Renderer{tmpl: tmpl, css: css}, nil
}

// Render сначала рендерит в буфер: при ошибке шаблона клиент не получит обрезанную страницу
func (r *Renderer) Render(w io.Writer, page Page) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "index.html", page); err != nil {
		return fmt.Errorf("рендер страницы: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func (r *Renderer) CSS() []byte {
	return r.css
}
