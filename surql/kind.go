package surql

import (
	"fmt"
	"strings"
)

// KindName is the closed set of value kinds a field may declare.
type KindName int

const (
	KindAny KindName = iota
	KindBool
	KindDatetime
	KindDecimal
	KindDuration
	KindFloat
	KindInt
	KindNumber
	KindObject
	KindString
	KindRecord
	KindGeometry
	KindArray
)

var kindNames = map[KindName]string{
	KindAny:      "any",
	KindBool:     "bool",
	KindDatetime: "datetime",
	KindDecimal:  "decimal",
	KindDuration: "duration",
	KindFloat:    "float",
	KindInt:      "int",
	KindNumber:   "number",
	KindObject:   "object",
	KindString:   "string",
	KindRecord:   "record",
	KindGeometry: "geometry",
	KindArray:    "array",
}

func (k KindName) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("KindName(%d)", int(k))
}

// LookupKind resolves a kind keyword, ignoring case.
func LookupKind(name string) (KindName, bool) {
	name = strings.ToLower(name)
	for k, s := range kindNames {
		if s == name {
			return k, true
		}
	}
	return 0, false
}

// Kind is a declared field type such as string, record<person> or
// array<int>.
type Kind struct {
	Name KindName
	// Args holds the parameters of record, geometry and array kinds.
	Args []Kind
	// Ident holds bare parameters that are not kinds themselves, like the
	// table names of record<person | user>.
	Ident []string
}

func (k Kind) String() string {
	var b strings.Builder
	b.WriteString(k.Name.String())
	if len(k.Args) == 0 && len(k.Ident) == 0 {
		return b.String()
	}
	sep := " | "
	if k.Name == KindArray {
		sep = ", "
	}
	parts := make([]string, 0, len(k.Args)+len(k.Ident))
	for _, a := range k.Args {
		parts = append(parts, a.String())
	}
	parts = append(parts, k.Ident...)
	b.WriteString("<")
	b.WriteString(strings.Join(parts, sep))
	b.WriteString(">")
	return b.String()
}

// MarshalText renders the kind in its canonical form.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Equal reports whether two kinds are structurally identical.
func (k Kind) Equal(o Kind) bool {
	if k.Name != o.Name || len(k.Args) != len(o.Args) || len(k.Ident) != len(o.Ident) {
		return false
	}
	for i := range k.Args {
		if !k.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	for i := range k.Ident {
		if k.Ident[i] != o.Ident[i] {
			return false
		}
	}
	return true
}
