package classifier

import (
	"fmt"
	"sort"
	"strings"
)

// Layout is the memory order of the input tensor.
type Layout string

const (
	// LayoutNHWC is channels-last, the Keras default.
	LayoutNHWC Layout = "nhwc"
	// LayoutNCHW is channels-first.
	LayoutNCHW Layout = "nchw"
)

// ParseLayout maps a config string to a Layout; empty means NHWC.
func ParseLayout(s string) (Layout, error) {
	switch Layout(strings.ToLower(strings.TrimSpace(s))) {
	case "", LayoutNHWC:
		return LayoutNHWC, nil
	case LayoutNCHW:
		return LayoutNCHW, nil
	default:
		return "", fmt.Errorf("unsupported input layout %q (want nhwc or nchw)", s)
	}
}

// NormalizeFunc maps one RGB pixel (0..255) to the three input channels in
// the order the model expects.
type NormalizeFunc func(r, g, b float32) (c0, c1, c2 float32)

// Variant is a supported model configuration: input resolution plus the
// normalization transform the weights were trained with.
type Variant struct {
	Name        string
	Description string
	Size        int
	Normalize   NormalizeFunc
}

// caffeNormalize converts RGB to BGR and subtracts the ImageNet channel means
// without scaling.
func caffeNormalize(r, g, b float32) (float32, float32, float32) {
	return b - 103.939, g - 116.779, r - 123.68
}

// tfNormalize scales each channel to [-1, 1].
func tfNormalize(r, g, b float32) (float32, float32, float32) {
	return r/127.5 - 1, g/127.5 - 1, b/127.5 - 1
}

var variants = map[string]Variant{
	"resnet50": {
		Name:        "resnet50",
		Description: "ResNet50 (ImageNet), 224x224, caffe-mode preprocessing",
		Size:        224,
		Normalize:   caffeNormalize,
	},
	"xception": {
		Name:        "xception",
		Description: "Xception (ImageNet), 299x299, tf-mode preprocessing",
		Size:        299,
		Normalize:   tfNormalize,
	},
}

// DefaultVariant is used when configuration leaves the variant empty.
const DefaultVariant = "resnet50"

// LookupVariant returns the named variant (case-insensitive).
func LookupVariant(name string) (Variant, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultVariant
	}
	v, ok := variants[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Variant{}, fmt.Errorf("unknown variant %q (known: %s)", name, strings.Join(VariantNames(), ", "))
	}
	return v, nil
}

// VariantNames returns the supported variant names in sorted order.
func VariantNames() []string {
	out := make([]string, 0, len(variants))
	for name := range variants {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Variants returns all supported variants sorted by name.
func Variants() []Variant {
	out := make([]Variant, 0, len(variants))
	for _, name := range VariantNames() {
		out = append(out, variants[name])
	}
	return out
}
