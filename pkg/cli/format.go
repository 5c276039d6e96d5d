package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/pkg/errors"
	"github.com/tidwall/pretty"
)

// PrettyJSON marshals v as indented, colored JSON.
func PrettyJSON(v interface{}) (string, error) {
	jsonBody, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrapf(err, "failed to marshal body as JSON")
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, jsonBody, "", "    "); err != nil {
		return "", err
	}

	return string(pretty.Color(buf.Bytes(), nil)), nil
}

// IndentJSON marshals v as indented JSON without colors, for output that is
// consumed by other programs.
func IndentJSON(v interface{}) ([]byte, error) {
	jsonBody, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal body as JSON")
	}

	return pretty.Pretty(jsonBody), nil
}

// ParseTemplate parses a user supplied output template. All sprig functions
// are available.
func ParseTemplate(text string) (*template.Template, error) {
	tpl, err := template.New("report").Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse output template")
	}

	return tpl, nil
}

func RenderTemplate(w io.Writer, tpl *template.Template, data interface{}) error {
	if err := tpl.Execute(w, data); err != nil {
		return errors.Wrap(err, "failed to render output template")
	}

	return nil
}
