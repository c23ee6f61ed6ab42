package transcript

import (
	"fmt"
	"io"

	"github.com/go-go-golems/marionette/pkg/content"
)

// Fprint renders a transcript in a readable chat-like form to the
// provided writer.
func Fprint(w io.Writer, t *Transcript) {
	if t == nil {
		return
	}
	for _, e := range t.Entries() {
		switch entry := e.(type) {
		case *Instructions:
			fmt.Fprintf(w, "instructions: %s\n", JoinText(entry.Segments))
			for _, td := range entry.ToolDefs {
				fmt.Fprintf(w, "  tool: %s - %s\n", td.Name, td.Description)
			}
		case *Prompt:
			fmt.Fprintf(w, "user: %s\n", JoinText(entry.Segments))
			if entry.Format != nil {
				fmt.Fprintf(w, "  expecting: %s\n", entry.Format.Name)
			}
		case *Response:
			if seg, ok := entry.Structured(); ok {
				fmt.Fprintf(w, "assistant (%s): %s\n", seg.Source, content.Encode(seg.Value))
			} else {
				fmt.Fprintf(w, "assistant: %s\n", entry.Text())
			}
		case *ToolCalls:
			for _, c := range entry.Calls {
				fmt.Fprintf(w, "tool_call %s: %s(%s)\n", c.ID, c.ToolName, content.Encode(c.Arguments))
			}
		case *ToolOutput:
			fmt.Fprintf(w, "tool_output %s: %s = %s\n", entry.ID, entry.ToolName, JoinText(entry.Segments))
		default:
			fmt.Fprintf(w, "unknown entry kind %s\n", e.Kind())
		}
	}
}
