package xdm

// Type describes an atomic type of the xs: hierarchy. Instances are
// package level singletons; identity comparison is the instance test.
type Type struct {
	name   QName
	parent *Type
}

var (
	TypeAnyAtomic = newType("anyAtomicType", nil)
	TypeUntyped   = newType("untypedAtomic", TypeAnyAtomic)
	TypeString    = newType("string", TypeAnyAtomic)
	TypeBoolean   = newType("boolean", TypeAnyAtomic)
	TypeDecimal   = newType("decimal", TypeAnyAtomic)
	TypeInteger   = newType("integer", TypeDecimal)
	TypeFloat     = newType("float", TypeAnyAtomic)
	TypeDouble    = newType("double", TypeAnyAtomic)
	TypeAnyURI    = newType("anyURI", TypeAnyAtomic)
	TypeQName     = newType("QName", TypeAnyAtomic)
	TypeDateTime  = newType("dateTime", TypeAnyAtomic)
	TypeDate      = newType("date", TypeAnyAtomic)
	TypeTime      = newType("time", TypeAnyAtomic)
	TypeDuration  = newType("duration", TypeAnyAtomic)
	TypeYearMonth = newType("yearMonthDuration", TypeDuration)
	TypeDayTime   = newType("dayTimeDuration", TypeDuration)
	TypeBase64    = newType("base64Binary", TypeAnyAtomic)
	TypeHex       = newType("hexBinary", TypeAnyAtomic)
)

var supportedTypes = map[ExpandedName]*Type{}

func newType(name string, parent *Type) *Type {
	t := Type{
		name: QName{
			Name:  name,
			Space: "xs",
			Uri:   SchemaSpace,
		},
		parent: parent,
	}
	supportedTypes[t.name.Expanded()] = &t
	return &t
}

// LookupType resolves an expanded type name against the supported xs:
// types. It returns nil for unknown names.
func LookupType(name ExpandedName) *Type {
	return supportedTypes[name]
}

// TypeNames lists the local names of every supported type.
func TypeNames() []string {
	var names []string
	for n := range supportedTypes {
		names = append(names, n.Name)
	}
	return names
}

func (t *Type) Name() QName {
	return t.name
}

func (t *Type) String() string {
	return t.name.QualifiedName()
}

// InstanceOf reports whether t is other or derives from it.
func (t *Type) InstanceOf(other *Type) bool {
	for x := t; x != nil; x = x.parent {
		if x == other {
			return true
		}
	}
	return false
}

// Numeric reports membership in the numeric tower.
func (t *Type) Numeric() bool {
	switch t {
	case TypeInteger, TypeDecimal, TypeFloat, TypeDouble:
		return true
	default:
		return false
	}
}

// rank orders the numeric tower for promotion: integer < decimal < float
// < double. Non numeric types have no rank.
func (t *Type) rank() int {
	switch t {
	case TypeInteger:
		return 1
	case TypeDecimal:
		return 2
	case TypeFloat:
		return 3
	case TypeDouble:
		return 4
	default:
		return 0
	}
}
