package schema

import (
	"fmt"
	"sync/atomic"
)

var nodeSeq atomic.Uint64

// Node is one aliased occurrence of a relation within a query.
//
// Two nodes over the same relation and alias are still distinct: identity is
// the node itself, so a self-join uses two nodes. ID is unique per process
// and stable for the node's lifetime.
type Node struct {
	id       uint64
	relation *Relation
	alias    string
}

// NewNode creates a node for rel. An empty alias defaults to the table name.
func NewNode(rel *Relation, alias string) *Node {
	if alias == "" {
		alias = rel.TableName()
	}
	return &Node{
		id:       nodeSeq.Add(1),
		relation: rel,
		alias:    alias,
	}
}

// ID returns the node's process-unique identifier.
func (n *Node) ID() uint64 { return n.id }

// Relation returns the underlying relation.
func (n *Node) Relation() *Relation { return n.relation }

// Alias returns the alias the relation is referenced by in the query.
func (n *Node) Alias() string { return n.alias }

// String implements fmt.Stringer.
func (n *Node) String() string {
	return fmt.Sprintf("%s AS %s", n.relation.TableName(), n.alias)
}
