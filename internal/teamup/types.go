package teamup

// Credentials identify one Teamup calendar. Supplied by the host, immutable
// for the duration of one execution, never persisted or logged.
type Credentials struct {
	Token       string
	CalendarKey string
}

// Fields is the open string-keyed bag the Teamup API exchanges. The API is
// schema-flexible, so bodies and payloads are generic maps with defined
// merge precedence rather than fixed structs.
type Fields map[string]any

// clone returns a shallow copy.
func (f Fields) clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// OutputItem is one downstream record plus the index of the input item that
// produced it. A single input can fan out into zero or many outputs, and
// consumers re-correlate through SourceIndex.
type OutputItem struct {
	Payload     Fields
	SourceIndex int
}
