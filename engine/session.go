package engine

// Session selects the catalog scope statements run against.
type Session struct {
	NS string
	DB string
}

// ForKV returns a session with no namespace or database selected.
func ForKV() Session { return Session{} }

// ForNS returns a session scoped to namespace ns.
func ForNS(ns string) Session { return Session{NS: ns} }

// ForDB returns a session scoped to database db in namespace ns.
func ForDB(ns, db string) Session { return Session{NS: ns, DB: db} }

func (s Session) String() string {
	switch {
	case s.NS == "":
		return "kv"
	case s.DB == "":
		return "ns:" + s.NS
	default:
		return "ns:" + s.NS + "/db:" + s.DB
	}
}

// Catalog keys. Definitions are stored under "!"-marked keys and the
// children of a named entity under "*"-marked keys, so a prefix scan over
// one level never sees entries from another.

func nsPrefix() string { return "/!ns/" }

func nsKey(ns string) string { return nsPrefix() + ns }

func dbPrefix(ns string) string { return "/*" + ns + "/!db/" }

func dbKey(ns, db string) string { return dbPrefix(ns) + db }

func tbPrefix(ns, db string) string { return "/*" + ns + "/*" + db + "/!tb/" }

func tbKey(ns, db, tb string) string { return tbPrefix(ns, db) + tb }

func fdPrefix(ns, db, tb string) string { return "/*" + ns + "/*" + db + "/*" + tb + "/!fd/" }

func fdKey(ns, db, tb, fd string) string { return fdPrefix(ns, db, tb) + fd }
