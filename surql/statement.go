package surql

import (
	"strings"
)

// Statement is one parsed statement. String returns the canonical text,
// which parses back into an equal statement.
type Statement interface {
	String() string
	statement()
}

// DefineNamespace is DEFINE NAMESPACE <name>.
type DefineNamespace struct {
	Name string
}

// DefineDatabase is DEFINE DATABASE <name>.
type DefineDatabase struct {
	Name string
}

// DefineTable is DEFINE TABLE <name>.
type DefineTable struct {
	Name       string
	Schemafull bool
	Drop       bool
}

// DefineField is DEFINE FIELD <name> ON <table>. Kind is nil when the field
// has no declared type; the expressions are nil when the clause is absent.
type DefineField struct {
	Name    string
	Table   string
	Kind    *Kind
	Value   Expr
	Default Expr
	Assert  Expr
}

// RemoveTable is REMOVE TABLE <name>.
type RemoveTable struct {
	Name string
}

// RemoveField is REMOVE FIELD <name> ON <table>.
type RemoveField struct {
	Name  string
	Table string
}

// InfoLevel selects the catalog scope an INFO statement reads.
type InfoLevel int

const (
	InfoKV InfoLevel = iota
	InfoNS
	InfoDB
	InfoTable
)

// Info is INFO FOR KV|NS|DB|TABLE <name>.
type Info struct {
	Level InfoLevel
	Table string
}

func (*DefineNamespace) statement() {}
func (*DefineDatabase) statement()  {}
func (*DefineTable) statement()     {}
func (*DefineField) statement()     {}
func (*RemoveTable) statement()     {}
func (*RemoveField) statement()     {}
func (*Info) statement()            {}

func (s *DefineNamespace) String() string { return "DEFINE NAMESPACE " + s.Name }

func (s *DefineDatabase) String() string { return "DEFINE DATABASE " + s.Name }

func (s *DefineTable) String() string {
	var b strings.Builder
	b.WriteString("DEFINE TABLE ")
	b.WriteString(s.Name)
	if s.Drop {
		b.WriteString(" DROP")
	}
	if s.Schemafull {
		b.WriteString(" SCHEMAFULL")
	} else {
		b.WriteString(" SCHEMALESS")
	}
	return b.String()
}

func (s *DefineField) String() string {
	var b strings.Builder
	b.WriteString("DEFINE FIELD ")
	b.WriteString(s.Name)
	b.WriteString(" ON ")
	b.WriteString(s.Table)
	if s.Kind != nil {
		b.WriteString(" TYPE ")
		b.WriteString(s.Kind.String())
	}
	if s.Value != nil {
		b.WriteString(" VALUE ")
		b.WriteString(s.Value.String())
	}
	if s.Default != nil {
		b.WriteString(" DEFAULT ")
		b.WriteString(s.Default.String())
	}
	if s.Assert != nil {
		b.WriteString(" ASSERT ")
		b.WriteString(s.Assert.String())
	}
	return b.String()
}

func (s *RemoveTable) String() string { return "REMOVE TABLE " + s.Name }

func (s *RemoveField) String() string { return "REMOVE FIELD " + s.Name + " ON " + s.Table }

func (s *Info) String() string {
	switch s.Level {
	case InfoNS:
		return "INFO FOR NS"
	case InfoDB:
		return "INFO FOR DB"
	case InfoTable:
		return "INFO FOR TABLE " + s.Table
	default:
		return "INFO FOR KV"
	}
}

// Script renders statements as a ';'-terminated script.
func Script(stmts []Statement) string {
	var b strings.Builder
	for _, s := range stmts {
		b.WriteString(s.String())
		b.WriteString(";\n")
	}
	return b.String()
}
