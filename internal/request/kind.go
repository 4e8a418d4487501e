package request

// Kind identifies one of the three vision tools.
type Kind string

const (
	KindDetect  Kind = "detect"
	KindSegment Kind = "segment"
	KindInpaint Kind = "inpaint"
)

// Kinds lists the tool kinds in registration order.
var Kinds = []Kind{KindDetect, KindSegment, KindInpaint}

// TaskType is the discriminator the backend uses to select an operation.
func (k Kind) TaskType() string {
	switch k {
	case KindDetect:
		return "det"
	case KindSegment:
		return "seg"
	case KindInpaint:
		return "inpainting"
	}
	return ""
}

// OutputDir is the directory, relative to the output root, receiving results.
func (k Kind) OutputDir() string {
	switch k {
	case KindDetect:
		return "det"
	case KindSegment:
		return "segmentation"
	case KindInpaint:
		return "inpainting"
	}
	return ""
}

// Valid reports whether k is a known tool kind.
func (k Kind) Valid() bool {
	return k.TaskType() != ""
}
