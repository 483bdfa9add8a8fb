package engine

import (
	"fmt"

	"github.com/yaklabco/mdview/pkg/mdast"
)

// ParseFailure describes a parse that panicked. Stack holds the goroutine
// stack at the point of recovery.
type ParseFailure struct {
	Cause any
	Stack []byte
}

func (f *ParseFailure) Error() string {
	return fmt.Sprintf("document could not be parsed: %v", f.Cause)
}

// Unwrap returns the panic value when it is an error.
func (f *ParseFailure) Unwrap() error {
	if err, ok := f.Cause.(error); ok {
		return err
	}
	return nil
}

// failureDocument replaces a whole document whose parse failed.
func failureDocument(text string, failure *ParseFailure) *mdast.Node {
	doc := mdast.NewDocument()
	doc.Origin = mdast.Range(0, len(text))

	errNode := mdast.NewErrorNode(failure.Error())
	errNode.Origin = doc.Origin
	mdast.AppendChild(doc, errNode)
	return doc
}
