package lake

// NodeType tags a node in the remote namespace. The wire values are the
// service's, not ours; anything else is reported verbatim in errors.
type NodeType string

const (
	NodeFile      NodeType = "FILE"
	NodeDirectory NodeType = "DIRECTORY"
)

func (t NodeType) Valid() bool {
	return t == NodeFile || t == NodeDirectory
}

func (t NodeType) String() string {
	return string(t)
}
