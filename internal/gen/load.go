// Package gen finds types annotated with //vetted:decode and renders their
// validating unmarshalers.
package gen

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/zoobzio/vetted"
)

// Directive marks a type declaration for generation:
//
//	//vetted:decode json,yaml
const Directive = "//vetted:decode"

// DefaultOutput is the file vetgen writes when no output is given.
const DefaultOutput = "vetted_gen.go"

// Config controls one generator run.
type Config struct {
	// Dir is the package directory to scan.
	Dir string

	// Output is the generated file name inside Dir. Existing content of
	// that file is ignored while scanning.
	Output string

	// DefaultFormats applies to directives without a format list.
	DefaultFormats []vetted.Format
}

// Package is a scanned package and its annotated types.
type Package struct {
	Name    string
	Types   []Type
	Imports []Import
}

// Import is a package the generated file needs.
type Import struct {
	Name string // explicit import name, empty for the default
	Path string
}

// Type is one annotated type declaration.
type Type struct {
	Name       string
	TypeParams string // "[T cmp.Ordered]" or empty
	TypeArgs   string // "[T]" or empty
	Formats    []vetted.Format
	IsStruct   bool
	Pos        token.Position
}

// Has reports whether t is generated for format f.
func (t Type) Has(f string) bool {
	for _, tf := range t.Formats {
		if string(tf) == f {
			return true
		}
	}
	return false
}

// ContentTypes returns the quoted content types of t's formats for a case clause.
func (t Type) ContentTypes() string {
	quoted := make([]string, len(t.Formats))
	for i, f := range t.Formats {
		quoted[i] = strconv.Quote(f.ContentType())
	}
	return strings.Join(quoted, ", ")
}

// methodNames maps each format to the method generated for it.
var methodNames = map[vetted.Format]string{
	vetted.FormatJSON:    "UnmarshalJSON",
	vetted.FormatYAML:    "UnmarshalYAML",
	vetted.FormatMsgpack: "DecodeMsgpack",
	vetted.FormatBSON:    "UnmarshalBSON",
	vetted.FormatXML:     "UnmarshalXML",
}

const markerMethod = "ValidatedOnDecode"

// generatedImports are the package names the generated file claims.
var generatedImports = map[vetted.Format][]Import{
	vetted.FormatJSON:    {{Name: "vettedjson", Path: "github.com/zoobzio/vetted/json"}},
	vetted.FormatYAML:    {{Path: "gopkg.in/yaml.v3"}, {Name: "vettedyaml", Path: "github.com/zoobzio/vetted/yaml"}},
	vetted.FormatMsgpack: {{Path: "github.com/vmihailenco/msgpack/v5"}, {Name: "vettedmsgpack", Path: "github.com/zoobzio/vetted/msgpack"}},
	vetted.FormatBSON:    {{Name: "vettedbson", Path: "github.com/zoobzio/vetted/bson"}},
	vetted.FormatXML:     {{Path: "encoding/xml"}},
}

var reservedNames = map[string]bool{
	"vetted": true, "vettedjson": true, "vettedyaml": true, "vettedmsgpack": true,
	"vettedbson": true, "yaml": true, "msgpack": true, "xml": true,
}

// Load parses the package in cfg.Dir and collects its annotated types.
// Problems in annotated declarations are returned together as Diagnostics.
func Load(cfg Config) (*Package, error) {
	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}
	if len(cfg.DefaultFormats) == 0 {
		cfg.DefaultFormats = []vetted.Format{vetted.FormatJSON}
	}

	entries, err := os.ReadDir(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", cfg.Dir, err)
	}

	fset := token.NewFileSet()
	var files []*ast.File
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") ||
			strings.HasSuffix(name, "_test.go") || name == cfg.Output {
			continue
		}
		file, err := parser.ParseFile(fset, filepath.Join(cfg.Dir, name), nil, parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		files = append(files, file)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no Go files in %s", cfg.Dir)
	}

	return load(fset, files, cfg.DefaultFormats)
}

// scan holds the state of one load.
type scan struct {
	fset     *token.FileSet
	defaults []vetted.Format
	methods  map[string]map[string]*ast.FuncDecl // receiver type -> method name -> decl
	decls    map[string]bool                     // package level type names
	diags    Diagnostics
}

func (s *scan) errorf(pos token.Pos, format string, args ...any) {
	s.diags = append(s.diags, Diagnostic{Pos: s.fset.Position(pos), Msg: fmt.Sprintf(format, args...)})
}

func load(fset *token.FileSet, files []*ast.File, defaults []vetted.Format) (*Package, error) {
	sort.Slice(files, func(i, j int) bool {
		return fset.Position(files[i].Pos()).Filename < fset.Position(files[j].Pos()).Filename
	})

	s := &scan{
		fset:     fset,
		defaults: defaults,
		methods:  make(map[string]map[string]*ast.FuncDecl),
		decls:    make(map[string]bool),
	}

	pkg := &Package{Name: files[0].Name.Name}
	for _, file := range files {
		if file.Name.Name != pkg.Name {
			return nil, fmt.Errorf("%s: package %s, expected %s",
				fset.Position(file.Package).Filename, file.Name.Name, pkg.Name)
		}
		s.collectDecls(file)
	}

	imports := make(map[string]Import)
	for _, file := range files {
		used := make(map[*ast.Comment]bool)
		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			pkg.Types = append(pkg.Types, s.typeDecl(file, gd, used, imports)...)
		}
		s.strayDirectives(file, used)
	}

	if len(s.diags) > 0 {
		s.diags.sort()
		return nil, s.diags
	}

	pkg.Imports = collectImports(pkg.Types, imports)
	return pkg, nil
}

// collectDecls records package level type names and methods by receiver.
func (s *scan) collectDecls(file *ast.File) {
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				s.decls[spec.(*ast.TypeSpec).Name.Name] = true
			}
		case *ast.FuncDecl:
			if d.Recv == nil || len(d.Recv.List) == 0 {
				continue
			}
			recv := receiverName(d.Recv.List[0].Type)
			if recv == "" {
				continue
			}
			if s.methods[recv] == nil {
				s.methods[recv] = make(map[string]*ast.FuncDecl)
			}
			s.methods[recv][d.Name.Name] = d
		}
	}
}

// receiverName returns the base type name of a receiver expression.
func receiverName(expr ast.Expr) string {
	for {
		switch e := expr.(type) {
		case *ast.StarExpr:
			expr = e.X
		case *ast.ParenExpr:
			expr = e.X
		case *ast.IndexExpr:
			expr = e.X
		case *ast.IndexListExpr:
			expr = e.X
		case *ast.Ident:
			return e.Name
		default:
			return ""
		}
	}
}

// directive returns the directive comment in doc, if any.
func directive(doc *ast.CommentGroup) *ast.Comment {
	if doc == nil {
		return nil
	}
	for _, c := range doc.List {
		if isDirective(c.Text) {
			return c
		}
	}
	return nil
}

func isDirective(text string) bool {
	rest, ok := strings.CutPrefix(text, Directive)
	return ok && (rest == "" || rest[0] == ' ' || rest[0] == '\t')
}

// typeDecl checks the annotated specs of one type declaration.
func (s *scan) typeDecl(file *ast.File, gd *ast.GenDecl, used map[*ast.Comment]bool, imports map[string]Import) []Type {
	var types []Type

	if c := directive(gd.Doc); c != nil {
		used[c] = true
		if gd.Lparen.IsValid() {
			s.errorf(c.Slash, "%s must annotate a single type, not a type group", Directive)
			return nil
		}
		if t, ok := s.typeSpec(file, gd.Specs[0].(*ast.TypeSpec), c, imports); ok {
			types = append(types, t)
		}
		return types
	}

	for _, spec := range gd.Specs {
		ts := spec.(*ast.TypeSpec)
		c := directive(ts.Doc)
		if c == nil {
			continue
		}
		used[c] = true
		if t, ok := s.typeSpec(file, ts, c, imports); ok {
			types = append(types, t)
		}
	}
	return types
}

// typeSpec checks one annotated type and builds its model.
func (s *scan) typeSpec(file *ast.File, ts *ast.TypeSpec, c *ast.Comment, imports map[string]Import) (Type, bool) {
	name := ts.Name.Name
	if ts.Assign.IsValid() {
		s.errorf(ts.Pos(), "%s is an alias; annotate the aliased type instead", name)
		return Type{}, false
	}
	if _, ok := ts.Type.(*ast.InterfaceType); ok {
		s.errorf(ts.Pos(), "%s is an interface; only concrete types can be decoded", name)
		return Type{}, false
	}

	formats, err := vetted.ParseFormats(strings.TrimPrefix(c.Text, Directive))
	if err != nil {
		s.errorf(c.Slash, "%s: %v", name, err)
		return Type{}, false
	}
	if len(formats) == 0 {
		formats = s.defaults
	}

	_, isStruct := ts.Type.(*ast.StructType)
	ok := true

	methods := s.methods[name]
	if fn, found := methods["Validate"]; !found {
		s.errorf(ts.Pos(), "%s has no Validate() error method", name)
		ok = false
	} else if !isValidateSignature(fn.Type) {
		s.errorf(fn.Pos(), "%s.Validate must have signature Validate() error", name)
		ok = false
	}

	for _, f := range formats {
		if f == vetted.FormatBSON && !isStruct {
			s.errorf(c.Slash, "%s: bson requires a struct type", name)
			ok = false
		}
		if fn, found := methods[methodNames[f]]; found {
			s.errorf(fn.Pos(), "%s already declares %s", name, methodNames[f])
			ok = false
		}
	}
	if fn, found := methods[markerMethod]; found {
		s.errorf(fn.Pos(), "%s already declares %s", name, markerMethod)
		ok = false
	}
	if s.decls[plainName(name)] {
		s.errorf(ts.Pos(), "%s: %s is already declared", name, plainName(name))
		ok = false
	}

	t := Type{
		Name:     name,
		Formats:  formats,
		IsStruct: isStruct,
		Pos:      s.fset.Position(ts.Pos()),
	}
	if ts.TypeParams != nil && len(ts.TypeParams.List) > 0 {
		params, args, err := s.typeParams(file, ts.TypeParams, imports)
		if err != nil {
			s.errorf(ts.Pos(), "%s: %v", name, err)
			ok = false
		}
		t.TypeParams, t.TypeArgs = params, args
	}

	return t, ok
}

func plainName(name string) string {
	return "vettedPlain" + name
}

// isValidateSignature reports whether ft is func() error.
func isValidateSignature(ft *ast.FuncType) bool {
	if ft.Params != nil && ft.Params.NumFields() != 0 {
		return false
	}
	if ft.Results == nil || ft.Results.NumFields() != 1 {
		return false
	}
	id, ok := ft.Results.List[0].Type.(*ast.Ident)
	return ok && id.Name == "error"
}

// typeParams renders a type parameter list and its argument list, recording
// the imports the constraints refer to.
func (s *scan) typeParams(file *ast.File, list *ast.FieldList, imports map[string]Import) (string, string, error) {
	var params, args []string
	for _, field := range list.List {
		var buf bytes.Buffer
		if err := format.Node(&buf, s.fset, field.Type); err != nil {
			return "", "", err
		}
		names := make([]string, len(field.Names))
		for i, n := range field.Names {
			names[i] = n.Name
		}
		params = append(params, strings.Join(names, ", ")+" "+buf.String())
		args = append(args, names...)

		var importErr error
		ast.Inspect(field.Type, func(n ast.Node) bool {
			sel, ok := n.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			id, ok := sel.X.(*ast.Ident)
			if !ok {
				return true
			}
			imp, found := fileImport(file, id.Name)
			if !found {
				return true
			}
			if reservedNames[id.Name] {
				importErr = fmt.Errorf("constraint package %q conflicts with a generated import", id.Name)
				return false
			}
			imports[imp.Path] = imp
			return true
		})
		if importErr != nil {
			return "", "", importErr
		}
	}
	return "[" + strings.Join(params, ", ") + "]", "[" + strings.Join(args, ", ") + "]", nil
}

// fileImport finds the import of file referred to as name.
func fileImport(file *ast.File, name string) (Import, bool) {
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		if spec.Name != nil {
			if spec.Name.Name == name {
				return Import{Name: name, Path: path}, true
			}
			continue
		}
		if defaultImportName(path) == name {
			return Import{Path: path}, true
		}
	}
	return Import{}, false
}

// defaultImportName guesses a package name from its import path.
func defaultImportName(path string) string {
	base := path[strings.LastIndex(path, "/")+1:]
	if strings.HasPrefix(base, "v") && len(base) > 1 && strings.Trim(base[1:], "0123456789") == "" {
		if i := strings.LastIndex(path[:len(path)-len(base)-1], "/"); i >= 0 {
			base = path[i+1 : len(path)-len(base)-1]
		}
	}
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	return strings.ReplaceAll(base, "-", "_")
}

// strayDirectives reports directives that do not annotate a type.
func (s *scan) strayDirectives(file *ast.File, used map[*ast.Comment]bool) {
	for _, group := range file.Comments {
		for _, c := range group.List {
			if isDirective(c.Text) && !used[c] {
				s.errorf(c.Slash, "%s must precede a type declaration", Directive)
			}
		}
	}
}

// collectImports returns the imports the generated file needs, standard
// library first, each group sorted by path.
func collectImports(types []Type, constraintImports map[string]Import) []Import {
	if len(types) == 0 {
		return nil
	}

	byPath := map[string]Import{"github.com/zoobzio/vetted": {Path: "github.com/zoobzio/vetted"}}
	for path, imp := range constraintImports {
		byPath[path] = imp
	}
	for _, t := range types {
		for _, f := range t.Formats {
			for _, imp := range generatedImports[f] {
				byPath[imp.Path] = imp
			}
		}
	}

	imports := make([]Import, 0, len(byPath))
	for _, imp := range byPath {
		imports = append(imports, imp)
	}
	sort.Slice(imports, func(i, j int) bool {
		si, sj := imports[i].IsStd(), imports[j].IsStd()
		if si != sj {
			return si
		}
		return imports[i].Path < imports[j].Path
	})
	return imports
}

// IsStd reports whether the import is from the standard library.
func (i Import) IsStd() bool {
	first, _, _ := strings.Cut(i.Path, "/")
	return !strings.Contains(first, ".")
}
