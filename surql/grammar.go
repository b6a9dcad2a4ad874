package surql

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// The grammar types below mirror the textual syntax. Parse converts them
// into the Statement and Expr types, which are what callers see.

//nolint:govet // participle grammar tags are not standard struct tags
type scriptGrammar struct {
	Statements []*statementGrammar `( @@ | ";" )*`
}

//nolint:govet
type statementGrammar struct {
	Pos    lexer.Position
	Define *defineGrammar `  "DEFINE" @@`
	Remove *removeGrammar `| "REMOVE" @@`
	Info   *infoGrammar   `| "INFO" "FOR" @@`
}

//nolint:govet
type defineGrammar struct {
	Namespace string              `  ( "NAMESPACE" | "NS" ) @Ident`
	Database  string              `| ( "DATABASE" | "DB" ) @Ident`
	Table     *defineTableGrammar `| ( "TABLE" | "TB" ) @@`
	Field     *defineFieldGrammar `| "FIELD" @@`
}

//nolint:govet
type defineTableGrammar struct {
	Name    string   `@Ident`
	Clauses []string `@( "DROP" | "SCHEMAFULL" | "SCHEMALESS" )*`
}

//nolint:govet
type defineFieldGrammar struct {
	Name    string         `@Ident`
	Table   string         `"ON" ( "TABLE" | "TB" )? @Ident`
	Clauses []*fieldClause `@@*`
}

//nolint:govet
type fieldClause struct {
	Type    *kindGrammar `  "TYPE" @@`
	Value   *orExpr      `| "VALUE" @@`
	Default *orExpr      `| "DEFAULT" @@`
	Assert  *orExpr      `| "ASSERT" @@`
}

//nolint:govet
type kindGrammar struct {
	Pos    lexer.Position
	Name   string         `@Ident`
	Params []*kindGrammar `( "<" @@ ( ( "|" | "," ) @@ )* ">" )?`
}

//nolint:govet
type removeGrammar struct {
	Table string              `  ( "TABLE" | "TB" ) @Ident`
	Field *removeFieldGrammar `| "FIELD" @@`
}

//nolint:govet
type removeFieldGrammar struct {
	Name  string `@Ident`
	Table string `"ON" ( "TABLE" | "TB" )? @Ident`
}

//nolint:govet
type infoGrammar struct {
	Level string `  @( "KV" | "ROOT" | "NS" | "NAMESPACE" | "DB" | "DATABASE" )`
	Table string `| ( "TABLE" | "TB" ) @Ident`
}

//nolint:govet
type orExpr struct {
	Left  *andExpr   `@@`
	Right []*andExpr `( ( "OR" | "||" ) @@ )*`
}

//nolint:govet
type andExpr struct {
	Left  *cmpExpr   `@@`
	Right []*cmpExpr `( ( "AND" | "&&" ) @@ )*`
}

//nolint:govet
type cmpExpr struct {
	Left  *operand `@@`
	Op    []string `( ( @( "!=" | "==" | "=" | "<=" | ">=" | "<" | ">" ) | @"IS" @"NOT"? )`
	Right *operand `  @@ )?`
}

//nolint:govet
type operand struct {
	None   bool      `  @"NONE"`
	Null   bool      `| @"NULL"`
	True   bool      `| @"TRUE"`
	False  bool      `| @"FALSE"`
	Number *string   `| @Number`
	String *string   `| @String`
	Param  *string   `| @Param`
	Sub    *orExpr   `| "(" @@ ")"`
	Path   *pathExpr `| @@`
}

//nolint:govet
type pathExpr struct {
	Pos    lexer.Position
	Parts  []string  `@Ident ( "::" @Ident )*`
	Call   *callArgs `( @@`
	Fields []string  `| ( "." @Ident )+ )?`
}

//nolint:govet
type callArgs struct {
	Args []*orExpr `"(" ( @@ ( "," @@ )* )? ")"`
}

var surqlLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `(?:--|//|#)[^\n]*|/\*(?s:.*?)\*/`},
	{Name: "String", Pattern: `'(?:\\.|[^'\\])*'|"(?:\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?`},
	{Name: "Param", Pattern: `\$[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Operator", Pattern: `!=|==|<=|>=|&&|\|\||::|[=<>|(),;.]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var surqlParser = participle.MustBuild[scriptGrammar](
	participle.Lexer(surqlLexer),
	participle.Elide("Comment", "Whitespace"),
	participle.CaseInsensitive("Ident"),
	participle.UseLookahead(2),
)
