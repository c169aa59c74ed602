package pigo

import (
	"os"

	"github.com/disintegration/imaging"
	pigocore "github.com/esimov/pigo/core"
	"github.com/pkg/errors"

	"github.com/clipforge/clipforge/internal/domain/subject"
	"github.com/clipforge/clipforge/internal/types"
)

// Detection quality below this is noise in practice.
const minQuality = 5.0

// Detector runs the pigo face cascade over still frames.
type Detector struct {
	classifier *pigocore.Pigo
}

// New loads and unpacks the binary cascade file (the stock pigo
// "facefinder" works).
func New(cascadePath string) (*Detector, error) {
	b, err := os.ReadFile(cascadePath)
	if err != nil {
		return nil, errors.Wrap(err, "read cascade")
	}
	classifier, err := pigocore.NewPigo().Unpack(b)
	if err != nil {
		return nil, errors.Wrap(err, "unpack cascade")
	}
	return &Detector{classifier: classifier}, nil
}

// DetectFaces returns candidate face regions in one frame image,
// each scored by its share of the frame area.
func (d *Detector) DetectFaces(framePath string) ([]types.FaceDetection, error) {
	img, err := imaging.Open(framePath, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrapf(err, "open frame %s", framePath)
	}

	bounds := img.Bounds()
	cols, rows := bounds.Dx(), bounds.Dy()
	if cols == 0 || rows == 0 {
		return nil, errors.Errorf("empty frame %s", framePath)
	}

	params := pigocore.CascadeParams{
		MinSize:     60,
		MaxSize:     rows,
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigocore.ImageParams{
			Pixels: pigocore.RgbToGrayscale(img),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, 0.2)

	return toFaceDetections(dets, cols, rows), nil
}

// toFaceDetections converts pigo's center+scale detections into
// top-left rectangles, dropping low-quality hits.
func toFaceDetections(dets []pigocore.Detection, cols, rows int) []types.FaceDetection {
	out := make([]types.FaceDetection, 0, len(dets))
	for _, det := range dets {
		if det.Q < minQuality || det.Scale <= 0 {
			continue
		}
		half := det.Scale / 2
		x := det.Col - half
		y := det.Row - half
		if x < 0 {
			x = 0
		}
		if y < 0 {
			y = 0
		}
		out = append(out, types.FaceDetection{
			X:          x,
			Y:          y,
			Width:      det.Scale,
			Height:     det.Scale,
			Confidence: subject.Confidence(det.Scale, det.Scale, cols, rows),
		})
	}
	return out
}
