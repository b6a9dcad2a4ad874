package generator

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"go/types"
	"io"
	"text/template"
)

// File describes one generated Go source file.
type File struct {
	Package string
	// Source is mentioned in the generated header, usually the migrations
	// directory.
	Source  string
	Records []*RecordType
}

const fileTemplate = `// Code generated by blackbird{{if .Source}} from {{.Source}}{{end}}. DO NOT EDIT.

package {{.Package}}
{{range .Records}}
// {{.TypeName}} represents the {{.TableName}} table
type {{.TypeName}} struct {
{{- range .Fields}}
	{{.Name}} {{.GoType}} {{tags .}}
{{- end}}
}

// TableName returns the table name for {{.TypeName}}
func ({{.TypeName}}) TableName() string {
	return {{printf "%q" .TableName}}
}
{{end}}`

var tmpl = template.Must(template.New("records").Funcs(template.FuncMap{
	"tags": generateTags,
}).Parse(fileTemplate))

func generateTags(f RecordField) string {
	json := f.Column
	if f.Optional {
		json += ",omitempty"
	}
	return fmt.Sprintf("`json:%q db:%q`", json, f.Column)
}

// Render writes f as gofmt-formatted Go source. The source is type-checked
// first, so a record that would not compile is an error instead of output.
func Render(w io.Writer, f File) error {
	if !ValidPackageName(f.Package) {
		return fmt.Errorf("invalid package name %q", f.Package)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, f); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("formatting generated code: %w", err)
	}
	if err := typeCheck(f.Package, src); err != nil {
		return err
	}
	_, err = w.Write(src)
	return err
}

// typeCheck relies on generated files having no imports.
func typeCheck(pkg string, src []byte) error {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "schema_gen.go", src, 0)
	if err != nil {
		return fmt.Errorf("parsing generated code: %w", err)
	}
	var conf types.Config
	if _, err := conf.Check(pkg, fset, []*ast.File{file}, nil); err != nil {
		return fmt.Errorf("generated code does not compile: %w", err)
	}
	return nil
}
