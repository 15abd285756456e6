package pmml

import "strconv"

// DefaultVersion is written when the caller does not ask for a version.
const DefaultVersion = "4.2"

var namespaces = map[string]string{
	"4.1":   "http://www.dmg.org/PMML-4_1",
	"4.2":   "http://www.dmg.org/PMML-4_2",
	"4.2.1": "http://www.dmg.org/PMML-4_2-",
	"4.3":   "http://www.dmg.org/PMML-4_3",
}

// Namespace returns the XML namespace URI for a PMML version string.
// Unknown versions resolve to the 4.2 namespace.
func Namespace(version string) string {
	if ns, ok := namespaces[version]; ok {
		return ns
	}
	return namespaces[DefaultVersion]
}

// KnownVersion reports whether version has its own namespace.
func KnownVersion(version string) bool {
	_, ok := namespaces[version]
	return ok
}

// Number renders v as plain decimal text, without an exponent.
func Number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
