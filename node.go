package jtd

// NodeKind identifies which of the nine AST variants a Node holds.
type NodeKind int

const (
	KindEmpty NodeKind = iota
	KindRef
	KindType
	KindEnum
	KindElements
	KindProperties
	KindValues
	KindDiscriminator
	KindNullable
)

func (k NodeKind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindRef:
		return "ref"
	case KindType:
		return "type"
	case KindEnum:
		return "enum"
	case KindElements:
		return "elements"
	case KindProperties:
		return "properties"
	case KindValues:
		return "values"
	case KindDiscriminator:
		return "discriminator"
	case KindNullable:
		return "nullable"
	default:
		return "unknown"
	}
}

// PrimitiveType enumerates the eleven JTD primitive type keywords.
type PrimitiveType string

const (
	TypeBoolean   PrimitiveType = "boolean"
	TypeString    PrimitiveType = "string"
	TypeTimestamp PrimitiveType = "timestamp"
	TypeInt8      PrimitiveType = "int8"
	TypeUint8     PrimitiveType = "uint8"
	TypeInt16     PrimitiveType = "int16"
	TypeUint16    PrimitiveType = "uint16"
	TypeInt32     PrimitiveType = "int32"
	TypeUint32    PrimitiveType = "uint32"
	TypeFloat32   PrimitiveType = "float32"
	TypeFloat64   PrimitiveType = "float64"
)

var validPrimitiveTypes = map[PrimitiveType]bool{
	TypeBoolean:   true,
	TypeString:    true,
	TypeTimestamp: true,
	TypeInt8:      true,
	TypeUint8:     true,
	TypeInt16:     true,
	TypeUint16:    true,
	TypeInt32:     true,
	TypeUint32:    true,
	TypeFloat32:   true,
	TypeFloat64:   true,
}

// intRanges gives the inclusive [min, max] bounds for the integer-typed
// primitive keywords, as float64 (JTD never validates beyond uint32, which
// float64 represents exactly).
var intRanges = map[PrimitiveType][2]float64{
	TypeInt8:   {-128, 127},
	TypeUint8:  {0, 255},
	TypeInt16:  {-32768, 32767},
	TypeUint16: {0, 65535},
	TypeInt32:  {-2147483648, 2147483647},
	TypeUint32: {0, 4294967295},
}

// NamedNode is one (key, Node) pair of an ordered node map, in the order
// the keys appeared in the compiled schema.
type NamedNode struct {
	Name string
	Node *Node
}

// OrderedNodeMap is an insertion-ordered, unique-key map from string to
// *Node. It backs Properties.Required/Optional, Discrim.Mapping, and
// Root's definitions table.
type OrderedNodeMap struct {
	entries []NamedNode
	index   map[string]int
}

// NewOrderedNodeMap returns an empty OrderedNodeMap.
func NewOrderedNodeMap() *OrderedNodeMap {
	return &OrderedNodeMap{index: make(map[string]int)}
}

// Set inserts or overwrites name, preserving first-insertion order.
func (m *OrderedNodeMap) Set(name string, n *Node) {
	if i, ok := m.index[name]; ok {
		m.entries[i].Node = n
		return
	}
	m.index[name] = len(m.entries)
	m.entries = append(m.entries, NamedNode{Name: name, Node: n})
}

// Get returns the node stored under name, or nil if absent.
func (m *OrderedNodeMap) Get(name string) *Node {
	if m == nil {
		return nil
	}
	if i, ok := m.index[name]; ok {
		return m.entries[i].Node
	}
	return nil
}

// Has reports whether name is present.
func (m *OrderedNodeMap) Has(name string) bool {
	if m == nil {
		return false
	}
	_, ok := m.index[name]
	return ok
}

// Len returns the number of entries.
func (m *OrderedNodeMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Entries returns the map's entries in insertion order. The returned slice
// must not be mutated.
func (m *OrderedNodeMap) Entries() []NamedNode {
	if m == nil {
		return nil
	}
	return m.entries
}

// Node is a compiled JSON Type Definition schema AST node. It is a tagged
// union over the nine forms in spec §3; exactly the fields relevant to
// Kind are populated, and Node is immutable once Compile returns it.
type Node struct {
	kind NodeKind

	// KindRef
	refName string

	// KindType
	typeKeyword PrimitiveType

	// KindEnum
	enumValues []string
	enumSet    map[string]struct{}

	// KindElements
	element *Node

	// KindProperties
	required   *OrderedNodeMap
	optional   *OrderedNodeMap
	additional bool

	// KindValues
	valuesElem *Node

	// KindDiscriminator
	tag     string
	mapping *OrderedNodeMap

	// KindNullable
	inner *Node
}

// Kind reports which of the nine AST variants n holds.
func (n *Node) Kind() NodeKind { return n.kind }

// Form is an enumeration of the eight forms a JSON Typedef schema may take
// on (spec §3). It mirrors the teacher's own string-valued Form type, kept
// separate from NodeKind because nullable is a modifier rather than a form
// in its own right: a KindNullable node reports the form of the schema it
// wraps, just as the teacher's Schema.Form() ignores its Nullable field.
type Form string

const (
	FormEmpty         Form = "empty"
	FormRef           Form = "ref"
	FormType          Form = "type"
	FormEnum          Form = "enum"
	FormElements      Form = "elements"
	FormProperties    Form = "properties"
	FormValues        Form = "values"
	FormDiscriminator Form = "discriminator"
)

// Form returns the JSON Typedef schema form that n takes on, looking
// through any nullable wrapper so callers can introspect a compiled AST
// without a type switch on every call site.
func (n *Node) Form() Form {
	switch n.kind {
	case KindNullable:
		return n.inner.Form()
	case KindRef:
		return FormRef
	case KindType:
		return FormType
	case KindEnum:
		return FormEnum
	case KindElements:
		return FormElements
	case KindProperties:
		return FormProperties
	case KindValues:
		return FormValues
	case KindDiscriminator:
		return FormDiscriminator
	default:
		return FormEmpty
	}
}

// RefName returns the definition name for a KindRef node.
func (n *Node) RefName() string { return n.refName }

// TypeKeyword returns the primitive keyword for a KindType node.
func (n *Node) TypeKeyword() PrimitiveType { return n.typeKeyword }

// EnumValues returns the allowed values, in declaration order, for a
// KindEnum node.
func (n *Node) EnumValues() []string { return n.enumValues }

// Element returns the child schema for a KindElements node.
func (n *Node) Element() *Node { return n.element }

// Required returns the required-properties map for a KindProperties node.
func (n *Node) Required() *OrderedNodeMap { return n.required }

// Optional returns the optional-properties map for a KindProperties node.
func (n *Node) Optional() *OrderedNodeMap { return n.optional }

// AdditionalAllowed reports whether a KindProperties node accepts keys
// outside Required/Optional.
func (n *Node) AdditionalAllowed() bool { return n.additional }

// ValuesElement returns the child schema for a KindValues node.
func (n *Node) ValuesElement() *Node { return n.valuesElem }

// Tag returns the discriminator property name for a KindDiscriminator node.
func (n *Node) Tag() string { return n.tag }

// Mapping returns the tag-value to variant-schema map for a
// KindDiscriminator node.
func (n *Node) Mapping() *OrderedNodeMap { return n.mapping }

// Inner returns the wrapped schema for a KindNullable node.
func (n *Node) Inner() *Node { return n.inner }

// Root is a compiled schema: its top-level node plus the flat definitions
// table Ref nodes resolve against.
type Root struct {
	top         *Node
	definitions *OrderedNodeMap
}

// Top returns the root schema's top-level node.
func (r *Root) Top() *Node { return r.top }

// Definitions returns the root's flat definitions table.
func (r *Root) Definitions() *OrderedNodeMap { return r.definitions }
