package mdast

// Alignment is a horizontal alignment for table columns and paragraphs.
type Alignment uint8

const (
	AlignDefault Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// String returns a human-readable name for the alignment.
func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "default"
	}
}

// MarshalText encodes the alignment by name.
func (a Alignment) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// BlockAttrs holds attributes for block-level nodes.
type BlockAttrs struct {
	// HeadingLevel is the heading level (1-6) for NodeHeading.
	HeadingLevel int `json:"heading_level,omitempty" yaml:"heading_level,omitempty"`

	// Align is the paragraph alignment set by alignment directives.
	Align Alignment `json:"align,omitempty" yaml:"align,omitempty"`

	List      *ListAttrs      `json:"list,omitempty" yaml:"list,omitempty"`
	ListItem  *ListItemAttrs  `json:"list_item,omitempty" yaml:"list_item,omitempty"`
	CodeBlock *CodeBlockAttrs `json:"code_block,omitempty" yaml:"code_block,omitempty"`
	Table     *TableAttrs     `json:"table,omitempty" yaml:"table,omitempty"`
	Raw       *RawAttrs       `json:"raw,omitempty" yaml:"raw,omitempty"`
	Container *ContainerAttrs `json:"container,omitempty" yaml:"container,omitempty"`

	// Message describes the failure for NodeError.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// ListAttrs holds attributes for list nodes.
type ListAttrs struct {
	// Ordered is true for ordered lists (1., 2., etc.).
	Ordered bool `json:"ordered" yaml:"ordered"`

	// BulletMarker is the bullet character used ("-", "+", "*").
	BulletMarker string `json:"bullet_marker,omitempty" yaml:"bullet_marker,omitempty"`

	// StartNumber is the starting number for ordered lists.
	StartNumber int `json:"start_number,omitempty" yaml:"start_number,omitempty"`

	// Delimiter is the delimiter for ordered lists ("." or ")").
	Delimiter string `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`

	// Tight is true if no blank lines separate the items.
	Tight bool `json:"tight" yaml:"tight"`
}

// ListItemAttrs holds attributes for list items.
type ListItemAttrs struct {
	// Task is true for "[ ]" and "[x]" items.
	Task bool `json:"task,omitempty" yaml:"task,omitempty"`

	// Checked is the task state.
	Checked bool `json:"checked,omitempty" yaml:"checked,omitempty"`
}

// CodeBlockAttrs holds attributes for code block nodes.
type CodeBlockAttrs struct {
	// FenceChar is the fence character ('`' or '~'); zero for indented blocks.
	FenceChar byte `json:"fence_char,omitempty" yaml:"fence_char,omitempty"`

	// FenceLength is the number of fence characters.
	FenceLength int `json:"fence_length,omitempty" yaml:"fence_length,omitempty"`

	// Info is the raw info string after the opening fence.
	Info string `json:"info,omitempty" yaml:"info,omitempty"`

	// Language is the first word of Info, or the detected language when Info is empty.
	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	// Detected is true when Language came from content detection.
	Detected bool `json:"detected,omitempty" yaml:"detected,omitempty"`

	// Indented is true for indented code blocks (vs fenced).
	Indented bool `json:"indented,omitempty" yaml:"indented,omitempty"`

	// Content is the literal code, lines joined with "\n".
	Content string `json:"content" yaml:"content"`
}

// TableAttrs holds attributes for table nodes.
// The first child row is the header row.
type TableAttrs struct {
	Align []Alignment `json:"align" yaml:"align"`
}

// RawAttrs holds the opaque payload of a RawBlock.
type RawAttrs struct {
	// TagName is the lower-cased outermost tag name.
	TagName string `json:"tag_name" yaml:"tag_name"`

	// Payload is the raw markup, passed through untouched.
	Payload string `json:"payload" yaml:"payload"`
}

// ContainerAttrs holds attributes for custom containers and asides.
type ContainerAttrs struct {
	// Name is the container class ("warning", "note", ...).
	Name string `json:"name" yaml:"name"`

	// Title is the optional title following the name.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Aside is true for "!!!" note/aside blocks.
	Aside bool `json:"aside,omitempty" yaml:"aside,omitempty"`
}

// InlineAttrs holds attributes for inline-level nodes.
type InlineAttrs struct {
	// Text holds the literal content for NodeText and NodeCode.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	// Link holds link attributes for NodeLink and NodeImage.
	Link *LinkAttrs `json:"link,omitempty" yaml:"link,omitempty"`

	// Color holds colors for NodeColoredSpan.
	Color *ColorAttrs `json:"color,omitempty" yaml:"color,omitempty"`
}

// LinkAttrs holds attributes for link and image nodes.
type LinkAttrs struct {
	// Destination is the (escaped) link target or image URI.
	Destination string `json:"destination" yaml:"destination"`

	// Title is the optional title.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Alt is the alternative text of an image.
	Alt string `json:"alt,omitempty" yaml:"alt,omitempty"`

	// ResolvedURI is Destination joined with the resource root, for relative
	// asset references. Empty when no resolution applied.
	ResolvedURI string `json:"resolved_uri,omitempty" yaml:"resolved_uri,omitempty"`
}

// ColorAttrs holds colors for colored spans. Either may be empty.
type ColorAttrs struct {
	Foreground string `json:"foreground,omitempty" yaml:"foreground,omitempty"`
	Background string `json:"background,omitempty" yaml:"background,omitempty"`
}
