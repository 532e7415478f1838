package carriers

import (
	"fmt"
	"os"

	"github.com/nikolalohinski/gonja"
	"github.com/nikolalohinski/gonja/exec"
)

// fallbackTemplate renders a minimal receipt when no carrier template file
// exists on disk. Field order follows the question order.
const fallbackTemplate = `<html>
    <body>
        <h1>{{ vervoerder|upper }}</h1>
        {% for item in fields %}
            <p>{{ item.key }}: {{ item.value }}</p>
        {% endfor %}
    </body>
</html>`

// Template wraps a parsed Jinja-style template.
type Template struct {
	tpl      *exec.Template
	fallback bool
}

// Fallback reports whether the built-in template is in use.
func (t *Template) Fallback() bool { return t.fallback }

// Render executes the template with the given variables.
func (t *Template) Render(data map[string]any) (string, error) {
	out, err := t.tpl.Execute(gonja.Context(data))
	if err != nil {
		return "", fmt.Errorf("template execute: %w", err)
	}
	return out, nil
}

// Template loads the carrier's HTML template from the template directory,
// falling back to the built-in generic one when the file is absent.
// A file that exists but fails to parse is an error, not a fallback.
func (r *Registry) Template(name string) (*Template, error) {
	path := r.TemplatePath(name)
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("template stat %s: %w", path, err)
		}
		tpl, err := gonja.FromString(fallbackTemplate)
		if err != nil {
			return nil, fmt.Errorf("builtin template parse: %w", err)
		}
		return &Template{tpl: tpl, fallback: true}, nil
	}
	tpl, err := gonja.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("template parse %s: %w", path, err)
	}
	return &Template{tpl: tpl}, nil
}
