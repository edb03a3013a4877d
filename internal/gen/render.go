package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"text/template"
)

// Header starts every generated file.
const Header = "// Code generated by vetgen. DO NOT EDIT."

var fileTemplate = template.Must(template.New("file").Parse(`{{.Header}}

package {{.Pkg.Name}}

import (
{{- range .Std}}
	{{if .Name}}{{.Name}} {{end}}"{{.Path}}"
{{- end}}
{{- if and .Std .Other}}
{{end}}
{{- range .Other}}
	{{if .Name}}{{.Name}} {{end}}"{{.Path}}"
{{- end}}
)
{{range .Pkg.Types}}
// vettedPlain{{.Name}} has the fields of {{.Name}} and none of its methods.
type vettedPlain{{.Name}}{{.TypeParams}} {{.Name}}{{.TypeArgs}}

// ValidatedOnDecode reports whether the unmarshaler for contentType runs Validate.
func ({{.Name}}{{.TypeArgs}}) ValidatedOnDecode(contentType string) bool {
	switch contentType {
	case {{.ContentTypes}}:
		return true
	}
	return false
}
{{if .Has "json"}}
// UnmarshalJSON decodes {{.Name}} and returns it only if Validate accepts it.
func (v *{{.Name}}{{.TypeArgs}}) UnmarshalJSON(data []byte) error {
	var plain vettedPlain{{.Name}}{{.TypeArgs}}
	if err := vettedjson.Unmarshal(data, &plain); err != nil {
		return err
	}
	return vetted.Accept(v, {{.Name}}{{.TypeArgs}}(plain))
}
{{end}}{{if .Has "yaml"}}
// UnmarshalYAML decodes {{.Name}} and returns it only if Validate accepts it.
func (v *{{.Name}}{{.TypeArgs}}) UnmarshalYAML(node *yaml.Node) error {
	var plain vettedPlain{{.Name}}{{.TypeArgs}}
	if err := vettedyaml.DecodeNode(node, &plain); err != nil {
		return err
	}
	return vetted.Accept(v, {{.Name}}{{.TypeArgs}}(plain))
}
{{end}}{{if .Has "msgpack"}}
// DecodeMsgpack decodes {{.Name}} and returns it only if Validate accepts it.
func (v *{{.Name}}{{.TypeArgs}}) DecodeMsgpack(dec *msgpack.Decoder) error {
	var plain vettedPlain{{.Name}}{{.TypeArgs}}
	if err := vettedmsgpack.DecodeFrom(dec, &plain); err != nil {
		return err
	}
	return vetted.Accept(v, {{.Name}}{{.TypeArgs}}(plain))
}
{{end}}{{if .Has "bson"}}
// UnmarshalBSON decodes {{.Name}} and returns it only if Validate accepts it.
func (v *{{.Name}}{{.TypeArgs}}) UnmarshalBSON(data []byte) error {
	var plain vettedPlain{{.Name}}{{.TypeArgs}}
	if err := vettedbson.Unmarshal(data, &plain); err != nil {
		return err
	}
	return vetted.Accept(v, {{.Name}}{{.TypeArgs}}(plain))
}
{{end}}{{if .Has "xml"}}
// UnmarshalXML decodes {{.Name}} and returns it only if Validate accepts it.
func (v *{{.Name}}{{.TypeArgs}}) UnmarshalXML(dec *xml.Decoder, start xml.StartElement) error {
	var plain vettedPlain{{.Name}}{{.TypeArgs}}
	if err := dec.DecodeElement(&plain, &start); err != nil {
		return err
	}
	return vetted.Accept(v, {{.Name}}{{.TypeArgs}}(plain))
}
{{end}}{{end}}`))

// Render returns the gofmt'ed generated file for pkg.
func (p *Package) Render() ([]byte, error) {
	data := struct {
		Header     string
		Pkg        *Package
		Std, Other []Import
	}{Header: Header, Pkg: p}
	for _, imp := range p.Imports {
		if imp.IsStd() {
			data.Std = append(data.Std, imp)
		} else {
			data.Other = append(data.Other, imp)
		}
	}

	var buf bytes.Buffer
	err := fileTemplate.Execute(&buf, data)
	if err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting generated code: %w", err)
	}
	return src, nil
}

// Result reports what a Run did.
type Result struct {
	Package *Package
	Path    string // file written or removed
	Written bool   // false when there was nothing to generate
}

// Run loads cfg.Dir and writes the generated file. When no type is
// annotated, a previously generated file is removed.
func Run(cfg Config) (*Result, error) {
	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}

	pkg, err := Load(cfg)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(cfg.Dir, cfg.Output)
	res := &Result{Package: pkg, Path: path}

	if len(pkg.Types) == 0 {
		if err := removeGenerated(path); err != nil {
			return nil, err
		}
		return res, nil
	}

	src, err := pkg.Render()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, src, 0o644); err != nil { //nolint:gosec
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}
	res.Written = true
	return res, nil
}

// removeGenerated deletes path if it is a file this tool generated.
func removeGenerated(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if !bytes.HasPrefix(data, []byte(Header)) {
		return nil
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}
