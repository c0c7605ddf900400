package definitions

// ConstantDefinition carries a fixed value with no byte layout of its
// own; it is used to name values such as a Boolean's TrueValue, or an
// Enumeration entry's Value.
type ConstantDefinition struct {
	Base
	Value int64
}

func NewConstant(base Base, value int64) *ConstantDefinition {
	return &ConstantDefinition{Base: base, Value: value}
}

func (d *ConstantDefinition) TypeIndicator() TypeIndicator { return TypeConstant }
func (d *ConstantDefinition) IsComposite() bool            { return false }
func (d *ConstantDefinition) ByteSize() (int, bool)         { return 0, false }

// EnumerationValue is one number-to-name mapping within an
// EnumerationDefinition.
type EnumerationValue struct {
	Name        string
	Number      int64
	Description string
}

// EnumerationDefinition is a semantic type with no direct byte-stream
// decode; its Map offers NameFor instead.
type EnumerationDefinition struct {
	Base
	Values       []EnumerationValue
	byNumber     map[int64]string
}

func NewEnumeration(base Base) *EnumerationDefinition {
	return &EnumerationDefinition{Base: base, byNumber: map[int64]string{}}
}

func (d *EnumerationDefinition) TypeIndicator() TypeIndicator { return TypeEnumeration }
func (d *EnumerationDefinition) IsComposite() bool            { return false }
func (d *EnumerationDefinition) ByteSize() (int, bool)         { return 0, false }

// AddValue registers a number-to-name mapping.
func (d *EnumerationDefinition) AddValue(value EnumerationValue) {
	d.Values = append(d.Values, value)
	d.byNumber[value.Number] = value.Name
}

// NameFor returns the name registered for number, if any.
func (d *EnumerationDefinition) NameFor(number int64) (string, bool) {
	name, ok := d.byNumber[number]
	return name, ok
}
