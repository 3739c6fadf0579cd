package probe

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "inception.json"))
	require.NoError(t, err)

	info, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 1920, info.Width)
	assert.Equal(t, 800, info.Height)
	assert.Equal(t, "hevc", info.VideoCodec)
	assert.Equal(t, 2, info.AudioStreams)
	assert.Equal(t, 8880500*time.Millisecond, info.Duration)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte(`{"streams":[{"codec_type":"audio"}]}`))
	assert.ErrorIs(t, err, ErrNoVideoStream)

	_, err = Decode([]byte(`{"streams":[{"codec_type":"video","width":600,"height":900,"disposition":{"attached_pic":1}}]}`))
	assert.ErrorIs(t, err, ErrNoVideoStream)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func fakeFFprobe(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffprobe")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755))
	return path
}

func TestFFprobeProbe(t *testing.T) {
	bin := fakeFFprobe(t, `echo '{"streams":[{"codec_name":"h264","codec_type":"video","width":1280,"height":720}],"format":{"duration":"60"}}'`)

	info, err := FFprobe{Binary: bin}.Probe(context.Background(), "/media/a.mkv")
	require.NoError(t, err)
	assert.Equal(t, Info{Width: 1280, Height: 720, VideoCodec: "h264", Duration: time.Minute}, info)
}

func TestFFprobeFailure(t *testing.T) {
	bin := fakeFFprobe(t, "echo 'Invalid data found' >&2\nexit 1")

	_, err := FFprobe{Binary: bin}.Probe(context.Background(), "/media/a.mkv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid data found")
}

func TestFFprobeTimeout(t *testing.T) {
	bin := fakeFFprobe(t, "exec sleep 5")

	start := time.Now()
	_, err := FFprobe{Binary: bin, Timeout: 100 * time.Millisecond}.Probe(context.Background(), "/media/a.mkv")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestFFprobeEmptyPath(t *testing.T) {
	_, err := FFprobe{}.Probe(context.Background(), " ")
	assert.Error(t, err)
}
