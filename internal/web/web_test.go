package web

import (
	"bytes"
	"strings"
	"testing"
)

type testForm struct {
	FirstName, LastName, Role, Salary string
}

func TestTemplatesRenderFieldErrors(t *testing.T) {
	tmpl := Templates()

	var buf bytes.Buffer
	err := tmpl.ExecuteTemplate(&buf, "new_record.html", map[string]any{
		"USState": "California",
		"Form":    testForm{LastName: "<b>Doe</b>"},
		"Errors":  map[string]string{"first_name": "This field is required."},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"HumanGov - California", "This field is required.", "is-invalid", "&lt;b&gt;Doe&lt;/b&gt;"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output", want)
		}
	}
}

func TestAllPagesParse(t *testing.T) {
	tmpl := Templates()
	for _, name := range []string{"home.html", "records.html", "new_record.html", "edit_record.html", "error.html", "not_found.html"} {
		if tmpl.Lookup(name) == nil {
			t.Fatalf("missing template %s", name)
		}
	}
}
