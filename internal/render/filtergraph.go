// Package render builds FFmpeg filter graphs and invokes the external
// renderer as a subprocess, capturing and classifying its failures.
package render

import (
	"fmt"
	"strings"

	"github.com/shortform/scenecraft/internal/model"
)

const (
	outputWidth  = 1080
	outputHeight = 1920
	outputFPS    = 30

	baseFontSize        = 48
	emphasisFontScale   = 1.1
	captionFontColor    = "white"
	emphasisFontColor   = "gold"
)

// SegmentConfig describes one scene's rendered output: the clips in its
// edit plan composited and trimmed to exactly the plan's coverage, with
// caption overlays burned in.
type SegmentConfig struct {
	Segments []model.EditSegment
	Captions []model.Caption
	AudioPath string
	OutputPath string
}

// BuildSegmentFilterGraph returns the filter_complex script text for a
// single scene: per-clip scale/crop/pan/zoom normalization, concatenation,
// and caption drawtext overlays. It is a pure function — writing the result
// to a temp file and invoking FFmpeg is the adapter's job.
func BuildSegmentFilterGraph(cfg SegmentConfig) string {
	var b strings.Builder

	labels := make([]string, len(cfg.Segments))
	for i, seg := range cfg.Segments {
		label := fmt.Sprintf("v%d", i)
		labels[i] = label
		writeClipFilter(&b, i, seg, label)
	}

	for _, label := range labels {
		fmt.Fprintf(&b, "[%s]", label)
	}
	fmt.Fprintf(&b, "concat=n=%d:v=1:a=0[concatv];", len(labels))

	writeCaptionOverlays(&b, cfg.Captions)

	return b.String()
}

func writeClipFilter(b *strings.Builder, idx int, seg model.EditSegment, label string) {
	zoom := seg.Zoom
	if zoom == 0 {
		zoom = 1.0
	}
	pan := seg.Pan
	if pan == "" {
		pan = "none"
	}
	duration := (seg.End - seg.Start).Seconds()

	scaledW := int(float64(outputWidth) * zoom)
	scaledH := int(float64(outputHeight) * zoom)

	fmt.Fprintf(b,
		"[%d:v]scale=%d:%d:force_original_aspect_ratio=increase,",
		idx, scaledW, scaledH,
	)
	fmt.Fprintf(b, "crop=%d:%d:%s,", outputWidth, outputHeight, cropOffset(pan, scaledW, scaledH))
	fmt.Fprintf(b,
		"fps=%d,format=yuv420p,trim=duration=%.3f,setpts=PTS-STARTPTS[%s];",
		outputFPS, duration, label,
	)
}

// cropOffset returns the ffmpeg crop filter's x:y offset expression for a
// pan direction: "none" centers, the four directions crop from the extreme
// edge on that axis.
func cropOffset(pan string, scaledW, scaledH int) string {
	centerX := fmt.Sprintf("(%d-%d)/2", scaledW, outputWidth)
	centerY := fmt.Sprintf("(%d-%d)/2", scaledH, outputHeight)

	switch pan {
	case "left":
		return fmt.Sprintf("0:%s", centerY)
	case "right":
		return fmt.Sprintf("(%d-%d):%s", scaledW, outputWidth, centerY)
	case "up":
		return fmt.Sprintf("%s:0", centerX)
	case "down":
		return fmt.Sprintf("%s:(%d-%d)", centerX, scaledH, outputHeight)
	default:
		return fmt.Sprintf("%s:%s", centerX, centerY)
	}
}

func writeCaptionOverlays(b *strings.Builder, captions []model.Caption) {
	current := "concatv"
	for i, c := range captions {
		next := fmt.Sprintf("cap%d", i)
		color, fontSize := captionFontColor, baseFontSize
		if len(c.Emphasis) > 0 {
			color, fontSize = emphasisFontColor, int(float64(fontSize)*emphasisFontScale)
		}
		fmt.Fprintf(b,
			"[%s]drawtext=text='%s':fontcolor=%s:fontsize=%d:"+
				"x=(w-text_w)/2:y=h-text_h-60:shadowcolor=black:shadowx=2:shadowy=2:"+
				"enable='between(t,%.3f,%.3f)'[%s];",
			current, escapeDrawtext(c.Text), color, fontSize, c.Start.Seconds(), c.End.Seconds(), next,
		)
		current = next
	}
	fmt.Fprintf(b, "[%s]null[video_out]", current)
}

func escapeDrawtext(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "'", "\\'")
	s = strings.ReplaceAll(s, ":", "\\:")
	return s
}

// BuildSegmentArgs returns the full argv for rendering one segment: maps
// each input clip plus the audio track, applies the filter graph, and
// encodes to the target codec/container.
func BuildSegmentArgs(ffmpegPath string, clipPaths []string, audioPath, filterScriptPath, outputPath string) []string {
	args := []string{
		ffmpegPath,
		"-hide_banner",
		"-loglevel", "error",
		"-y",
	}
	for _, p := range clipPaths {
		args = append(args, "-i", p)
	}
	args = append(args, "-i", audioPath)

	args = append(args,
		"-filter_complex_script", filterScriptPath,
		"-map", "[video_out]",
		"-map", fmt.Sprintf("%d:a:0", len(clipPaths)),
		"-c:v", "libx264", "-preset", "medium", "-crf", "18",
		"-c:a", "aac", "-b:a", "192k", "-ar", "44100", "-ac", "2",
		"-movflags", "+faststart",
		"-f", "mp4",
		outputPath,
	)
	return args
}

// BuildConcatArgs returns the argv for stream-copy concatenation of
// per-scene segment files into the final output, using FFmpeg's concat
// demuxer (no re-encode).
func BuildConcatArgs(ffmpegPath, concatListPath, outputPath string) []string {
	return []string{
		ffmpegPath,
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", concatListPath,
		"-c", "copy",
		"-movflags", "+faststart",
		outputPath,
	}
}

// BuildConcatList renders the concat demuxer's file-list text for the given
// segment paths.
func BuildConcatList(segmentPaths []string) string {
	var b strings.Builder
	for _, p := range segmentPaths {
		fmt.Fprintf(&b, "file '%s'\n", p)
	}
	return b.String()
}
