package crop

import (
	"fmt"
	"sort"

	"github.com/clipforge/clipforge/internal/types"
)

// Formats enumerates the supported output presets. The vertical
// presets share geometry; encode bitrates differ from the square
// preset only where the platforms demand it.
var Formats = map[string]types.Format{
	"tiktok": {
		Name: "tiktok", AspectW: 9, AspectH: 16,
		CanvasWidth: 1080, CanvasHeight: 1920,
		VideoBitrate: "5000k", AudioBitrate: "192k", Preset: "medium", CRF: 23,
	},
	"instagram-reel": {
		Name: "instagram-reel", AspectW: 9, AspectH: 16,
		CanvasWidth: 1080, CanvasHeight: 1920,
		VideoBitrate: "5000k", AudioBitrate: "192k", Preset: "medium", CRF: 23,
	},
	"youtube-short": {
		Name: "youtube-short", AspectW: 9, AspectH: 16,
		CanvasWidth: 1080, CanvasHeight: 1920,
		VideoBitrate: "5000k", AudioBitrate: "192k", Preset: "medium", CRF: 23,
	},
	"square": {
		Name: "square", AspectW: 1, AspectH: 1,
		CanvasWidth: 1080, CanvasHeight: 1080,
		VideoBitrate: "4000k", AudioBitrate: "192k", Preset: "medium", CRF: 23,
	},
}

// Lookup resolves a preset name.
func Lookup(name string) (types.Format, error) {
	f, ok := Formats[name]
	if !ok {
		return types.Format{}, fmt.Errorf("unknown format %q (supported: %v)", name, Names())
	}
	return f, nil
}

// Names lists the supported preset names, sorted.
func Names() []string {
	out := make([]string, 0, len(Formats))
	for name := range Formats {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Plan computes the crop rectangle and output canvas for one source
// geometry. Horizontal placement is fixed to the left edge: on screen
// recordings that keeps a bottom-left webcam overlay and the main
// content both in frame, so a detected subject does not move the crop
// (see PlanSubjectCentered for the opt-in alternative). Vertical
// placement centers the crop. Pure function; identical inputs yield
// identical plans.
func Plan(srcW, srcH int, subject *types.SubjectLocation, f types.Format) types.CropPlan {
	_ = subject

	cropW, cropH := cropRect(srcW, srcH, f)
	return clampPlan(types.CropPlan{
		CropX:        0,
		CropY:        (srcH - cropH) / 2,
		CropWidth:    cropW,
		CropHeight:   cropH,
		CanvasWidth:  f.CanvasWidth,
		CanvasHeight: f.CanvasHeight,
	}, srcW, srcH)
}

// PlanSubjectCentered is the alternate mode that centers the crop on
// the detected subject's horizontal position. Without a subject it
// falls back to the default left-aligned plan.
func PlanSubjectCentered(srcW, srcH int, subject *types.SubjectLocation, f types.Format) types.CropPlan {
	if subject == nil {
		return Plan(srcW, srcH, nil, f)
	}
	cropW, cropH := cropRect(srcW, srcH, f)
	subjectCenter := subject.X + subject.Width/2
	return clampPlan(types.CropPlan{
		CropX:        subjectCenter - cropW/2,
		CropY:        (srcH - cropH) / 2,
		CropWidth:    cropW,
		CropHeight:   cropH,
		CanvasWidth:  f.CanvasWidth,
		CanvasHeight: f.CanvasHeight,
	}, srcW, srcH)
}

// cropRect fits the target aspect inside the source: take full source
// height and derive the width; if that exceeds the source width,
// invert and derive the height from the full width instead.
func cropRect(srcW, srcH int, f types.Format) (int, int) {
	cropH := srcH
	cropW := srcH * f.AspectW / f.AspectH
	if cropW > srcW {
		cropW = srcW
		cropH = srcW * f.AspectH / f.AspectW
		if cropH > srcH {
			cropH = srcH
		}
	}
	if cropW < 1 {
		cropW = 1
	}
	if cropH < 1 {
		cropH = 1
	}
	return cropW, cropH
}

func clampPlan(p types.CropPlan, srcW, srcH int) types.CropPlan {
	p.CropX = clampInt(p.CropX, 0, srcW-p.CropWidth)
	p.CropY = clampInt(p.CropY, 0, srcH-p.CropHeight)
	return p
}

func clampInt(x, a, b int) int {
	if b < a {
		b = a
	}
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}
