package vision

import (
	"bufio"
	"fmt"
	"image"
	"os"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"golang.org/x/image/draw"
)

// ImageNet normalization (standard for torchvision models).
var (
	imagenetMean = [3]float32{0.485, 0.456, 0.406}
	imagenetStd  = [3]float32{0.229, 0.224, 0.225}
)

const defaultImageSize = 224

type ONNXOptions struct {
	SharedLibPath string
	// ImageSize fills dynamic height/width dimensions of the model input.
	ImageSize    int
	ApplySoftmax bool
}

// Classifier runs an NCHW image classification model through ONNX Runtime.
type Classifier struct {
	mu sync.Mutex

	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	labels  []string
	width   int
	height  int
	softmax bool
}

var envMu sync.Mutex

func initEnvironment(libPath string) error {
	envMu.Lock()
	defer envMu.Unlock()
	if ort.IsInitialized() {
		return nil
	}
	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("onnx init environment: %w", err)
	}
	return nil
}

// LoadClassifier builds a classifier from a local model file and a labels file
// holding one label per line, in output order.
func LoadClassifier(modelPath, labelsPath string, opts ONNXOptions) (*Classifier, error) {
	if opts.ImageSize <= 0 {
		opts.ImageSize = defaultImageSize
	}
	if err := initEnvironment(opts.SharedLibPath); err != nil {
		return nil, err
	}

	labels, err := loadLabels(labelsPath)
	if err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx get input/output info: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("onnx model has no inputs or outputs")
	}

	inputShape, err := modelInputShape(inputs[0].Dimensions, opts.ImageSize)
	if err != nil {
		return nil, err
	}
	outputShape := concreteShape(outputs[0].Dimensions, 1)
	if classes := int(outputShape.FlattenedSize()); classes != len(labels) {
		return nil, fmt.Errorf("model outputs %d classes but labels file has %d", classes, len(labels))
	}

	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("onnx new input tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("onnx new output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{inputs[0].Name}, []string{outputs[0].Name},
		[]ort.Value{inputTensor}, []ort.Value{outputTensor}, nil)
	if err != nil {
		outputTensor.Destroy()
		inputTensor.Destroy()
		return nil, fmt.Errorf("onnx new session: %w", err)
	}

	return &Classifier{
		session: session,
		input:   inputTensor,
		output:  outputTensor,
		labels:  labels,
		width:   int(inputShape[3]),
		height:  int(inputShape[2]),
		softmax: opts.ApplySoftmax,
	}, nil
}

// modelInputShape resolves the model's input dimensions for imageSize and requires NCHW with 3 channels.
func modelInputShape(dims ort.Shape, imageSize int) (ort.Shape, error) {
	shape := concreteShape(dims, int64(imageSize))
	if len(shape) != 4 || shape[1] != 3 {
		return nil, fmt.Errorf("onnx model input %v is not NCHW with 3 channels", dims)
	}
	return shape, nil
}

// concreteShape replaces dynamic dimensions: the batch axis becomes 1, the rest become fill.
func concreteShape(dims ort.Shape, fill int64) ort.Shape {
	out := make(ort.Shape, len(dims))
	for i, d := range dims {
		switch {
		case d > 0:
			out[i] = d
		case i == 0:
			out[i] = 1
		default:
			out[i] = fill
		}
	}
	return out
}

func loadLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var labels []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if label := strings.TrimSpace(sc.Text()); label != "" {
			labels = append(labels, label)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("labels file %s is empty", path)
	}
	return labels, nil
}

func (c *Classifier) Labels() []string {
	return c.labels
}

// Infer preprocesses img, runs the session and returns per-label probabilities.
func (c *Classifier) Infer(img *Canonical) ([]float32, error) {
	inputData := preprocess(img.Image, c.width, c.height)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, fmt.Errorf("classifier is closed")
	}

	inData := c.input.GetData()
	if len(inData) != len(inputData) {
		return nil, fmt.Errorf("input tensor size %d != preprocessed %d", len(inData), len(inputData))
	}
	copy(inData, inputData)
	if err := c.session.Run(); err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}

	scores := append([]float32{}, c.output.GetData()...)
	if c.softmax {
		scores = Softmax(scores)
	}
	return scores, nil
}

func (c *Classifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var closeErr error
	if c.session != nil {
		closeErr = c.session.Destroy()
		c.session = nil
	}
	if c.input != nil {
		c.input.Destroy()
		c.input = nil
	}
	if c.output != nil {
		c.output.Destroy()
		c.output = nil
	}
	return closeErr
}

// DestroyEnvironment releases the ONNX Runtime environment. Call once on shutdown.
func DestroyEnvironment() error {
	envMu.Lock()
	defer envMu.Unlock()
	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}

// preprocess resizes img to width×height and lays it out as NCHW float32 with ImageNet normalization.
func preprocess(img image.Image, width, height int) []float32 {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	out := make([]float32, 3*height*width)
	size := width * height

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			px := dst.RGBAAt(x, y)
			r, g, b := float32(px.R)/255.0, float32(px.G)/255.0, float32(px.B)/255.0
			out[0*size+idx] = (r - imagenetMean[0]) / imagenetStd[0]
			out[1*size+idx] = (g - imagenetMean[1]) / imagenetStd[1]
			out[2*size+idx] = (b - imagenetMean[2]) / imagenetStd[2]
		}
	}
	return out
}
