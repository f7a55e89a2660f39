package model

// NodeID identifies a node in the scene hierarchy.
type NodeID int32

// NoNode marks the absence of a node (e.g. the parent of a root).
const NoNode NodeID = -1

// Valid reports whether id refers to a node.
func (id NodeID) Valid() bool {
	return id >= 0
}

// AssetHandle identifies an asset (mesh or navigation mesh) in an asset store.
// The zero handle is never issued.
type AssetHandle uint64

// Valid reports whether h was issued by an asset store.
func (h AssetHandle) Valid() bool {
	return h != 0
}

// NodeLabel is a notification that node Node got its label for the first time.
type NodeLabel struct {
	Node  NodeID
	Label string
}
