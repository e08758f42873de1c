package extract

// Namespace URIs of the inline XBRL vocabulary
const (
	NamespaceIX    = "http://www.xbrl.org/2013/inlineXBRL" // Inline XBRL 1.1
	NamespaceIX10  = "http://www.xbrl.org/2008/inlineXBRL" // Inline XBRL 1.0
	NamespaceXBRLI = "http://www.xbrl.org/2003/instance"
	NamespaceLink  = "http://www.xbrl.org/2003/linkbase"
	NamespaceXLink = "http://www.w3.org/1999/xlink"
	NamespaceXSI   = "http://www.w3.org/2001/XMLSchema-instance"
)

// isInline reports whether space is one of the inline XBRL namespaces
func isInline(space string) bool {
	return space == NamespaceIX || space == NamespaceIX10
}
