package brace

// keywords is the Java keyword set of JLS2 §3.9. The literals true, false
// and null are not keywords; assert and enum postdate the second edition.
var keywords = map[string]struct{}{
	"abstract": {}, "boolean": {}, "break": {}, "byte": {}, "case": {},
	"catch": {}, "char": {}, "class": {}, "const": {}, "continue": {},
	"default": {}, "do": {}, "double": {}, "else": {}, "extends": {},
	"final": {}, "finally": {}, "float": {}, "for": {}, "goto": {},
	"if": {}, "implements": {}, "import": {}, "instanceof": {}, "int": {},
	"interface": {}, "long": {}, "native": {}, "new": {}, "package": {},
	"private": {}, "protected": {}, "public": {}, "return": {}, "short": {},
	"static": {}, "strictfp": {}, "super": {}, "switch": {}, "synchronized": {},
	"this": {}, "throw": {}, "throws": {}, "transient": {}, "try": {},
	"void": {}, "volatile": {}, "while": {},
}

// IsKeyword reports whether word is a Java keyword.
func IsKeyword(word string) bool {
	_, ok := keywords[word]
	return ok
}

// firstWord returns the leading [A-Za-z0-9_] run of field.
func firstWord(field string) string {
	for i := 0; i < len(field); i++ {
		c := field[i]
		if c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') {
			continue
		}
		return field[:i]
	}
	return field
}
