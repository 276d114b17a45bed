package fetchxml

import "fmt"

// DecodeReason categorizes why a document could not be decoded.
type DecodeReason string

const (
	// ReasonEmpty indicates absent or blank input.
	ReasonEmpty DecodeReason = "EMPTY_INPUT"

	// ReasonMalformed indicates the text is not well-formed XML.
	ReasonMalformed DecodeReason = "MALFORMED_XML"

	// ReasonNoFetch indicates the document has no fetch element.
	ReasonNoFetch DecodeReason = "NO_FETCH"

	// ReasonNoEntity indicates the fetch element has no entity element.
	ReasonNoEntity DecodeReason = "NO_ENTITY"
)

// DecodeError is returned by Decode. Parse swallows it.
type DecodeError struct {
	Reason DecodeReason
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return string(e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError is returned by Encode for a tree it cannot encode.
// Serialize swallows it.
type EncodeError struct {
	// Path locates the offending node, e.g. "$.rules[1].rules[0]".
	Path    string
	Message string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %s", e.Path, e.Message)
}
