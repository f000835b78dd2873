package settings

import "fmt"

// The version of the offset table below. Any change to the table must bump it.
const ProtocolVersion = 1

// Size in bytes of a single settings block element.
const ElementSize = 4

// A Field identifies a settings block element by its element offset.
type Field uint32

// Settings block layout. Values are element (not byte) offsets.
const (
	Width Field = iota
	Height
	SamplesPerPixel
	MaxBounces
	OriginX
	OriginY
	OriginZ
	LookAtX
	LookAtY
	LookAtZ
	TextureChanged
	ResetRequested
	Busy

	// Number of elements in the block.
	NumFields
)

// Size in bytes of the settings block.
const BlockSize = int(NumFields) * ElementSize

// The typed view used to access a field.
type Kind uint8

const (
	IntKind Kind = iota
	FloatKind
)

var fieldNames = [NumFields]string{
	"width", "height", "samplesPerPixel", "maxBounces",
	"originX", "originY", "originZ",
	"lookAtX", "lookAtY", "lookAtZ",
	"textureChanged", "resetRequested", "busy",
}

// Get the typed view for this field.
func (f Field) Kind() Kind {
	if f >= OriginX && f <= LookAtZ {
		return FloatKind
	}
	return IntKind
}

// Returns true if this is one of the 0/1 control flags.
func (f Field) IsFlag() bool {
	return f >= TextureChanged && f <= Busy
}

func (f Field) String() string {
	if f < NumFields {
		return fieldNames[f]
	}
	return fmt.Sprintf("field(%d)", uint32(f))
}
