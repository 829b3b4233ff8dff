package types

// Model represents a classification model known to the server: either a built-in
// variant or an ONNX file discovered in the models directory.
type Model struct {
	// Stable identifier for the model.
	// example: resnet50
	ID string `json:"id" example:"resnet50"`
	// Human-friendly name.
	// example: ResNet50 (ImageNet)
	Name string `json:"name" example:"ResNet50 (ImageNet)"`
	// Absolute path to the model file on disk, if any.
	// example: /srv/models/resnet50.onnx
	Path string `json:"path,omitempty" example:"/srv/models/resnet50.onnx"`
	// Square input resolution expected by the model in pixels.
	// example: 224
	InputSize int `json:"input_size,omitempty" example:"224"`
	// True for the model currently served by the workers.
	// example: true
	Active bool `json:"active,omitempty" example:"true"`
}

// Prediction is one ranked (label, confidence) pair.
type Prediction struct {
	// Human-readable class name from the label vocabulary.
	// example: tabby
	Label string `json:"label" example:"tabby"`
	// Probability of the class in [0,1].
	// example: 0.87
	Confidence float32 `json:"confidence" example:"0.87"`
}
