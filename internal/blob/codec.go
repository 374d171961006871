package blob

import (
	"encoding/json"

	"github.com/zxcat/rustic/internal/errors"
	"github.com/zxcat/rustic/internal/ids"
)

// The wire representation of a tree blob. Real deployments decrypt and
// deserialize trees via the out-of-scope crypto/serialization collaborator
//; this JSON codec exists only so the module is self-contained
// for tests.

type wireNode struct {
	Name    string   `json:"name"`
	Type    NodeType `json:"type"`
	Content ids.IDs  `json:"content,omitempty"`
	Subtree *ids.ID  `json:"subtree,omitempty"`
}

type wireTree struct {
	Nodes []wireNode `json:"nodes"`
}

// EncodeTree serializes t to its plaintext wire form.
func EncodeTree(t Tree) ([]byte, error) {
	w := wireTree{}
	for _, n := range t.Nodes {
		w.Nodes = append(w.Nodes, wireNode{
			Name: n.Name, Type: n.Type, Content: n.Content, Subtree: n.Subtree,
		})
	}
	data, err := json.Marshal(w)
	if err != nil {
		return nil, errors.Wrap(err, "encode tree")
	}
	return data, nil
}

// DecodeTree deserializes a tree blob's plaintext.
func DecodeTree(data []byte) (*Tree, error) {
	var w wireTree
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errors.Wrap(err, "decode tree")
	}
	t := &Tree{}
	for _, n := range w.Nodes {
		t.Nodes = append(t.Nodes, Node{Name: n.Name, Type: n.Type, Content: n.Content, Subtree: n.Subtree})
	}
	return t, nil
}

// EncodeSnapshot serializes a snapshot.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "encode snapshot")
	}
	return data, nil
}

// DecodeSnapshot deserializes a snapshot.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, errors.Wrap(err, "decode snapshot")
	}
	return s, nil
}
