package httpwire

// Verb is an HTTP request method.
type Verb int

const (
	VerbGet Verb = iota
	VerbHead
	VerbPost
	VerbPut
	VerbDelete
	VerbConnect
	VerbOptions
	VerbTrace
	VerbPatch
)

var verbNames = [...]string{
	VerbGet:     "GET",
	VerbHead:    "HEAD",
	VerbPost:    "POST",
	VerbPut:     "PUT",
	VerbDelete:  "DELETE",
	VerbConnect: "CONNECT",
	VerbOptions: "OPTIONS",
	VerbTrace:   "TRACE",
	VerbPatch:   "PATCH",
}

// Verbs lists every known verb in declaration order.
func Verbs() []Verb {
	verbs := make([]Verb, len(verbNames))
	for i := range verbNames {
		verbs[i] = Verb(i)
	}
	return verbs
}

// ParseVerb maps an exact, case-sensitive method token to its Verb.
func ParseVerb(text string) (Verb, error) {
	for i, name := range verbNames {
		if name == text {
			return Verb(i), nil
		}
	}
	return 0, Malformed("unknown method %q", text)
}

// String returns the wire token for v.
func (v Verb) String() string {
	if v < 0 || int(v) >= len(verbNames) {
		return "UNKNOWN"
	}
	return verbNames[v]
}

// Bytes returns the wire token for v as bytes.
func (v Verb) Bytes() []byte {
	return []byte(v.String())
}
