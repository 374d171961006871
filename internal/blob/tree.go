package blob

import "github.com/zxcat/rustic/internal/ids"

// NodeType classifies an entry within a decoded tree.
type NodeType uint8

const (
	NodeFile NodeType = iota
	NodeDir
	NodeOther
)

// Node is one entry of a decoded tree blob. File nodes carry the ordered
// list of data-blob ids making up the file's content; Dir nodes carry a
// single subtree-blob id; every other node type contributes no blobs.
type Node struct {
	Name    string
	Type    NodeType
	Content ids.IDs // valid when Type == NodeFile
	Subtree *ids.ID // valid when Type == NodeDir
}

// Tree is the decoded form of a tree blob: an ordered sequence of nodes.
type Tree struct {
	Nodes []Node
}
