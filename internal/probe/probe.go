// Package probe reads the stream layout of a video file with ffprobe.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ErrNoVideoStream is returned for files without a video stream.
var ErrNoVideoStream = errors.New("no video stream")

// Prober inspects a media file.
type Prober interface {
	Probe(ctx context.Context, path string) (Info, error)
}

// Info is the part of a probe result the definition audit needs.
type Info struct {
	Width        int
	Height       int
	VideoCodec   string
	AudioStreams int
	Duration     time.Duration
}

type output struct {
	Streams []struct {
		CodecName string `json:"codec_name"`
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		// cover art is carried as a video stream with attached_pic set
		Disposition struct {
			AttachedPic int `json:"attached_pic"`
		} `json:"disposition"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// FFprobe runs the ffprobe binary.
type FFprobe struct {
	Binary  string        // defaults to "ffprobe"
	Timeout time.Duration // zero means no per-file limit
}

// Probe executes ffprobe against path and decodes the first real video stream.
func (f FFprobe) Probe(ctx context.Context, path string) (Info, error) {
	binary := strings.TrimSpace(f.Binary)
	if binary == "" {
		binary = "ffprobe"
	}
	if strings.TrimSpace(path) == "" {
		return Info{}, errors.New("ffprobe: empty path")
	}
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Info{}, fmt.Errorf("ffprobe %s: %w: %s", path, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Info{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return Decode(out)
}

// Decode parses ffprobe's JSON output.
func Decode(data []byte) (Info, error) {
	var out output
	if err := json.Unmarshal(data, &out); err != nil {
		return Info{}, fmt.Errorf("ffprobe parse: %w", err)
	}

	var info Info
	found := false
	for _, s := range out.Streams {
		switch strings.ToLower(s.CodecType) {
		case "video":
			if found || s.Disposition.AttachedPic == 1 || s.Width == 0 {
				continue
			}
			info.Width, info.Height, info.VideoCodec = s.Width, s.Height, s.CodecName
			found = true
		case "audio":
			info.AudioStreams++
		}
	}
	if !found {
		return Info{}, ErrNoVideoStream
	}
	if secs, err := strconv.ParseFloat(strings.TrimSpace(out.Format.Duration), 64); err == nil && secs > 0 {
		info.Duration = time.Duration(secs * float64(time.Second))
	}
	return info, nil
}
