package render

// Buffer is an in-memory Surface. Terminal views read rows back out of it by
// filtered index.
type Buffer struct {
	nodes    []Node
	first    int
	firstPos int
	rows     int
	replaces int
	patches  int
}

// Replace implements Surface.
func (b *Buffer) Replace(nodes []Node) {
	b.nodes = nodes
	b.rows = 0
	b.first, b.firstPos = 0, 0
	for pos, n := range nodes {
		if n.Kind != RowNode {
			continue
		}
		if b.rows == 0 {
			b.first, b.firstPos = n.Index, pos
		}
		b.rows++
	}
	b.replaces++
}

// Patch implements Surface.
func (b *Buffer) Patch(pos int, node Node) {
	if pos < 0 || pos >= len(b.nodes) {
		return
	}
	b.nodes[pos] = node
	b.patches++
}

// Nodes returns the current body.
func (b *Buffer) Nodes() []Node {
	return b.nodes
}

// Row returns the materialized row for a filtered index.
func (b *Buffer) Row(index int) (Node, bool) {
	if b.rows == 0 || index < b.first || index >= b.first+b.rows {
		return Node{}, false
	}
	return b.nodes[b.firstPos+index-b.first], true
}

// Leading is the height of the spacer above the rows.
func (b *Buffer) Leading() int {
	if len(b.nodes) > 0 && b.nodes[0].Kind == LeadSpacer {
		return b.nodes[0].Height
	}
	return 0
}

// Trailing is the height of the spacer below the rows.
func (b *Buffer) Trailing() int {
	if n := len(b.nodes); n > 0 && b.nodes[n-1].Kind == TrailSpacer {
		return b.nodes[n-1].Height
	}
	return 0
}

// Replaces counts full replaces.
func (b *Buffer) Replaces() int {
	return b.replaces
}

// Patches counts single-node patches.
func (b *Buffer) Patches() int {
	return b.patches
}
